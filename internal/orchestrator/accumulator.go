package orchestrator

import (
	"strings"

	"promptvault/internal/llm"
	"promptvault/internal/stream"
	"promptvault/internal/tools"
)

// turnAccumulator collects everything a turn produces across rounds: the
// visible text, tool results, and citations deduplicated by source key. The
// once-per-turn status flags live here because they span rounds.
type turnAccumulator struct {
	text        strings.Builder
	toolResults []tools.Result
	citations   []llm.Citation
	seenSources map[string]bool

	thoughtSignaled   bool
	searchingSignaled bool
}

func newTurnAccumulator() *turnAccumulator {
	return &turnAccumulator{seenSources: make(map[string]bool)}
}

func (a *turnAccumulator) addText(delta string) {
	a.text.WriteString(delta)
}

func (a *turnAccumulator) addToolResult(res tools.Result) {
	a.toolResults = append(a.toolResults, res)
}

// addCitations appends citations not seen before this turn. First occurrence
// wins; later duplicates of the same source key are dropped.
func (a *turnAccumulator) addCitations(citations []llm.Citation) {
	for _, c := range citations {
		if c.SourceKey == "" || a.seenSources[c.SourceKey] {
			continue
		}
		a.seenSources[c.SourceKey] = true
		a.citations = append(a.citations, c)
	}
}

func (a *turnAccumulator) sources() []stream.Source {
	if len(a.citations) == 0 {
		return nil
	}
	sources := make([]stream.Source, 0, len(a.citations))
	for _, c := range a.citations {
		sources = append(sources, stream.Source{Key: c.SourceKey, Title: c.Title, URI: c.URI})
	}
	return sources
}

func (a *turnAccumulator) result(rounds int) TurnResult {
	return TurnResult{
		Text:        a.text.String(),
		ToolResults: a.toolResults,
		Citations:   a.citations,
		Rounds:      rounds,
	}
}
