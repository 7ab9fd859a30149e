// Package composer builds the final system instruction for a chat turn. It
// restructures the base instruction text for recency bias (constraints
// always last), sharpens vague constraints, appends retrieval context, and
// classifies the user's intent to pick a mode-specific instruction block.
package composer

import "strings"

// minBodyForSynthesis is the body length above which missing Constraints and
// Output Format sections are synthesized.
const minBodyForSynthesis = 200

const defaultOutputFormatBlock = `## Output Format
- Respond in well-structured Markdown with short paragraphs.
- Lead with the answer; put background after it.`

const defaultConstraintsBlock = `## Constraints
- Ground every claim in the provided context or the conversation; do not invent facts.
- Keep the answer under 400 words unless the user asks for more detail.`

const visualizationBlock = `## Visualization Mode
When the user's request calls for a visualization, invoke the show_chart tool
with a complete chart specification instead of describing the chart in prose.`

const documentModeBlock = `## Document Mode
The user is drafting a document. Invoke the generate_document tool with a full
section outline once requirements are clear; invoke ask_clarifying_questions
first if they are not. Do not render charts in this mode.`

const narrativeBlock = `## Narrative Mode
Answer in prose. Only invoke tools when the user explicitly asks for an
artifact.`

const offTopicBlock = `## Scope
The request appears unrelated to the workspace. Answer briefly and steer the
conversation back to the user's prompt library.`

// Compose applies the structural transforms to the base instruction and
// appends retrieval context and the mode block for the resolved intent.
//
// Reassembly order is persona, body, Output Format, Constraints — always
// Constraints last, then the appendices. This is a recency-bias strategy:
// the model weighs late instructions heaviest.
func Compose(base, retrievalContext string, intent Intent) string {
	persona, rest := splitPersona(base)

	outputFormat, rest, hasOutput := extractSection(rest, outputFormatHeadings)
	constraints, rest, hasConstraints := extractSection(rest, constraintHeadings)
	body := strings.TrimSpace(rest)

	if !hasOutput && len(body) > minBodyForSynthesis {
		outputFormat = defaultOutputFormatBlock
	}
	if !hasConstraints && len(body) > minBodyForSynthesis {
		constraints = defaultConstraintsBlock
	}

	constraints = Sharpen(constraints)

	segments := make([]string, 0, 6)
	for _, segment := range []string{persona, body, outputFormat, constraints} {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if retrievalContext != "" {
		segments = append(segments, retrievalContext)
	}
	if block := modeBlock(intent); block != "" {
		segments = append(segments, block)
	}

	return strings.Join(segments, "\n\n")
}

// modeBlock returns the intent-specific instruction block. Document mode
// suppresses the visualization instructions entirely.
func modeBlock(intent Intent) string {
	switch intent {
	case IntentVisualization:
		return visualizationBlock
	case IntentDocumentDrafting:
		return documentModeBlock
	case IntentOffTopic:
		return offTopicBlock
	default:
		return narrativeBlock
	}
}
