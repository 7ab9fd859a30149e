package orchestrator

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_turn_service.go -package=mocks promptvault/internal/orchestrator TurnService

import (
	"context"

	"promptvault/internal/llm"
	"promptvault/internal/retrieval"
	"promptvault/internal/stream"
	"promptvault/internal/tools"
)

// TurnRequest carries everything one chat turn needs. The user message must
// already be appended to the conversation log before Run is called.
type TurnRequest struct {
	ConversationID string
	SubjectID      string
	Message        string
}

// TurnResult summarizes a completed turn for the caller. The same data has
// already been streamed to the sink event by event.
type TurnResult struct {
	Text        string
	ToolResults []tools.Result
	Citations   []llm.Citation
	Rounds      int
}

// TurnService runs one chat turn, pushing events to the sink as the turn
// progresses. This interface is defined from the transport handler's
// perspective (consumer-first).
type TurnService interface {
	Run(ctx context.Context, req TurnRequest, sink stream.Sink) (TurnResult, error)
}

// Retriever is the retrieval collaborator. Implementations degrade to empty
// results on backend failure; Search never fails the turn.
type Retriever interface {
	Search(ctx context.Context, query string, includeGraph bool) *retrieval.Result
}
