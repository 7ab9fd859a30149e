package composer

import (
	"regexp"

	"promptvault/internal/tools"
)

// Intent categorizes the latest user message to bias tool selection.
type Intent string

const (
	IntentNarrative        Intent = "narrative"
	IntentVisualization    Intent = "visualization"
	IntentDocumentDrafting Intent = "document_drafting"
	IntentOffTopic         Intent = "off_topic"
)

// Fixed intent patterns, checked in order. The first category whose pattern
// matches wins.
var (
	visualPattern    = regexp.MustCompile(`(?i)\b(chart|graph|plot|diagram|dashboard|visuali[sz]e|visuali[sz]ation)\b`)
	draftPattern     = regexp.MustCompile(`(?i)\b(draft|write up|document|proposal|report|memo|one[- ]pager|spec)\b`)
	narrativePattern = regexp.MustCompile(`(?i)\b(tell me|story|walk me through|describe|narrate)\b`)
	offTopicPattern  = regexp.MustCompile(`(?i)\b(weather|horoscope|lottery|sports score|celebrity)\b`)
)

// Signals carries the per-turn conversation-state flags the composer needs.
// They are computed once per turn here, never re-derived elsewhere.
type Signals struct {
	// AwaitingClarifyingAnswers is set when a recent assistant message
	// invoked the clarifying-questions tool. A user's answer to a
	// clarifying question rarely contains language that would classify as a
	// drafting request on its own, so it forces a drafting continuation.
	AwaitingClarifyingAnswers bool
}

// SignalsFromRecentToolCalls derives signals from the tool names invoked by
// recent assistant messages, newest last.
func SignalsFromRecentToolCalls(names []string) Signals {
	var signals Signals
	for _, name := range names {
		if name == tools.ToolAskClarifyingQuestions {
			signals.AwaitingClarifyingAnswers = true
		}
	}
	return signals
}

// ClassifyIntent resolves the intent for the latest user message. When the
// message matches no explicit pattern but the conversation is waiting on
// clarifying answers, the intent is forced to document drafting so the flow
// continues.
func ClassifyIntent(latest string, signals Signals) Intent {
	switch {
	case visualPattern.MatchString(latest):
		return IntentVisualization
	case draftPattern.MatchString(latest):
		return IntentDocumentDrafting
	case narrativePattern.MatchString(latest):
		return IntentNarrative
	case offTopicPattern.MatchString(latest):
		return IntentOffTopic
	}

	if signals.AwaitingClarifyingAnswers {
		return IntentDocumentDrafting
	}
	return IntentNarrative
}
