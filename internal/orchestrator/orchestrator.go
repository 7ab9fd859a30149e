// Package orchestrator drives one chat turn through its full lifecycle:
// classify intent, retrieve context, compose the system instruction, then run
// the model round loop, executing tool calls between rounds until the model
// answers in plain text or the round ceiling is hit.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"promptvault/internal/composer"
	"promptvault/internal/contextutil"
	"promptvault/internal/llm"
	"promptvault/internal/retrieval"
	"promptvault/internal/storage"
	"promptvault/internal/stream"
	"promptvault/internal/tools"
)

// DefaultMaxRounds bounds the model round loop when no ceiling is configured.
const DefaultMaxRounds = 5

// errStreamClosed marks a sink write failure: the client is gone, so the turn
// stops emitting and nothing is persisted.
var errStreamClosed = errors.New("event stream closed")

// Orchestrator implements TurnService. One instance serves all conversations;
// all per-turn state lives in Run.
type Orchestrator struct {
	model     llm.Streamer
	router    *tools.Router
	retriever Retriever
	convs     storage.ConversationStore
	msgs      storage.MessageStore
	maxRounds int
}

// New creates an orchestrator. retriever may be nil; retrieval is then
// skipped even for conversations that have it enabled.
func New(model llm.Streamer, router *tools.Router, retriever Retriever, convs storage.ConversationStore, msgs storage.MessageStore, maxRounds int) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Orchestrator{
		model:     model,
		router:    router,
		retriever: retriever,
		convs:     convs,
		msgs:      msgs,
		maxRounds: maxRounds,
	}
}

// Run executes one chat turn. Events are pushed to the sink in emission
// order; the assistant turn is persisted only when the turn completes or has
// at least one tool result, and never after cancellation.
func (o *Orchestrator) Run(ctx context.Context, req TurnRequest, sink stream.Sink) (TurnResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.ConversationID == "" {
		return TurnResult{}, &ValidationError{Field: "conversation_id", Message: "conversation id is required"}
	}
	if req.Message == "" {
		return TurnResult{}, &ValidationError{Field: "message", Message: "message is required"}
	}

	conv, err := o.convs.Get(ctx, req.ConversationID)
	if errors.Is(err, storage.ErrNotFound) {
		return TurnResult{}, ErrConversationNotFound
	}
	if err != nil {
		// The stream is already open, so the failure must reach the client
		// as an error event before the turn ends.
		logger.ErrorContext(ctx, "failed to load conversation", "error", err)
		_ = emit(sink, stream.Errorf("Failed to load the conversation."))
		return TurnResult{}, WrapError(err, "failed to load conversation")
	}

	history, err := o.msgs.ListByConversation(ctx, req.ConversationID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load message history", "error", err)
		_ = emit(sink, stream.Errorf("Failed to load the conversation history."))
		return TurnResult{}, WrapError(err, "failed to load message history")
	}

	intent := composer.ClassifyIntent(req.Message, composer.SignalsFromRecentToolCalls(recentToolNames(history)))
	if err := emit(sink, stream.Intent(string(intent))); err != nil {
		return TurnResult{}, err
	}

	var contextText string
	if conv.RetrievalEnabled && o.retriever != nil {
		res := o.retriever.Search(ctx, req.Message, true)
		if err := emitDataSources(sink, res); err != nil {
			return TurnResult{}, err
		}
		contextText = res.ContextText()
	}

	system := composer.Compose(conv.SystemPrompt, contextText, intent)
	decls := o.router.Declarations(ctx)

	resolver := o.router.TurnResolver()
	defer func() {
		_ = resolver.Close()
	}()

	modelHistory := modelTurns(history)
	if len(modelHistory) == 0 || modelHistory[len(modelHistory)-1].Role != llm.RoleUser {
		modelHistory = append(modelHistory, llm.TextMessage(llm.RoleUser, req.Message))
	}

	acc := newTurnAccumulator()
	rounds := 0

	for {
		if ctx.Err() != nil {
			return acc.result(rounds), ctx.Err()
		}
		if rounds == o.maxRounds {
			// The over-limit round never starts; the turn degrades to done
			// with whatever has accumulated.
			logger.WarnContext(ctx, "round ceiling reached, ending turn", "rounds", rounds)
			break
		}

		index := rounds
		if err := emit(sink, roundEvent(index, stream.RoundStarted, nil)); err != nil {
			return acc.result(rounds), err
		}
		rounds++

		out, err := o.streamRound(ctx, sink, acc, llm.GenerateRequest{
			SystemInstruction: system,
			History:           modelHistory,
			Tools:             decls,
		})
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation is silent: no further events, no persistence.
				return acc.result(rounds), ctx.Err()
			}
			if errors.Is(err, errStreamClosed) {
				return acc.result(rounds), err
			}
			logger.ErrorContext(ctx, "model stream failed", "error", err, "round", index)
			_ = emit(sink, stream.Errorf("The model service failed while generating a response."))
			if len(acc.toolResults) > 0 {
				if perr := o.persistTurn(ctx, conv.ID, acc); perr != nil {
					logger.ErrorContext(ctx, "failed to persist partial turn", "error", perr)
				}
			}
			return acc.result(rounds), fmt.Errorf("%w: %v", ErrModelService, err)
		}

		if len(out.pending) == 0 {
			if err := emit(sink, roundEvent(index, stream.RoundComplete, nil)); err != nil {
				return acc.result(rounds), err
			}
			break
		}

		if err := emit(sink, stream.Status(stream.StatusToolCalling)); err != nil {
			return acc.result(rounds), err
		}

		// The model's own parts are replayed verbatim, thoughts included; the
		// tool results go back as a single user turn of function responses.
		modelHistory = append(modelHistory, llm.Message{Role: llm.RoleModel, Parts: out.parts})

		responses, roundTools, err := o.executeTools(ctx, sink, resolver, acc, out.pending)
		if err != nil {
			return acc.result(rounds), err
		}
		modelHistory = append(modelHistory, llm.Message{Role: llm.RoleUser, Parts: responses})

		if err := emit(sink, roundEvent(index, stream.RoundComplete, roundTools)); err != nil {
			return acc.result(rounds), err
		}
	}

	if sources := acc.sources(); len(sources) > 0 {
		if err := emit(sink, stream.Event{Type: stream.EventSources, Sources: sources}); err != nil {
			return acc.result(rounds), err
		}
	}
	if err := emit(sink, stream.Done()); err != nil {
		return acc.result(rounds), err
	}

	if err := o.persistTurn(ctx, conv.ID, acc); err != nil {
		logger.ErrorContext(ctx, "failed to persist assistant turn", "error", err)
		return acc.result(rounds), WrapError(err, "failed to persist assistant turn")
	}

	logger.InfoContext(ctx, "turn complete",
		"conversation_id", conv.ID,
		"intent", string(intent),
		"rounds", rounds,
		"tool_calls", len(acc.toolResults),
		"citations", len(acc.citations),
	)
	return acc.result(rounds), nil
}

// roundOutput is what one model round produced: every part in delivery order
// plus the function calls awaiting execution.
type roundOutput struct {
	parts   []llm.Part
	pending []tools.Request
}

// streamRound runs one streaming completion, forwarding text deltas and
// status transitions to the sink. Thought and searching statuses fire at most
// once per turn, generating at most once per round.
func (o *Orchestrator) streamRound(ctx context.Context, sink stream.Sink, acc *turnAccumulator, req llm.GenerateRequest) (roundOutput, error) {
	var out roundOutput
	generatingSignaled := false

	err := o.model.StreamGenerate(ctx, req, func(chunk llm.Chunk) error {
		for _, part := range chunk.Parts {
			out.parts = append(out.parts, part)

			switch part.Kind {
			case llm.PartThought:
				if acc.thoughtSignaled {
					continue
				}
				acc.thoughtSignaled = true
				if err := emit(sink, stream.Status(stream.StatusThinking)); err != nil {
					return err
				}
			case llm.PartFunctionCall:
				out.pending = append(out.pending, tools.Request{
					ID:        uuid.NewString(),
					Name:      part.Call.Name,
					Arguments: part.Call.Args,
				})
			case llm.PartText:
				if part.Text == "" {
					continue
				}
				if !generatingSignaled {
					generatingSignaled = true
					if err := emit(sink, stream.Status(stream.StatusGenerating)); err != nil {
						return err
					}
				}
				acc.addText(part.Text)
				if err := emit(sink, stream.Text(part.Text)); err != nil {
					return err
				}
			}
		}

		if len(chunk.Citations) > 0 {
			if !acc.searchingSignaled {
				acc.searchingSignaled = true
				if err := emit(sink, stream.Status(stream.StatusSearching)); err != nil {
					return err
				}
			}
			acc.addCitations(chunk.Citations)
		}
		return nil
	})
	return out, err
}

// executeTools runs the round's pending calls in order, pairing each
// invocation with a running and a result event sharing the same call id.
func (o *Orchestrator) executeTools(ctx context.Context, sink stream.Sink, resolver *tools.Resolver, acc *turnAccumulator, pending []tools.Request) ([]llm.Part, []stream.RoundTool, error) {
	responses := make([]llm.Part, 0, len(pending))
	roundTools := make([]stream.RoundTool, 0, len(pending))

	for _, call := range pending {
		running := stream.Event{Type: stream.EventToolCall, ToolCall: &stream.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Status:    stream.ToolCallRunning,
			Arguments: call.Arguments,
		}}
		if err := emit(sink, running); err != nil {
			return nil, nil, err
		}

		res := resolver.Resolve(ctx, call)
		acc.addToolResult(res)

		done := stream.Event{Type: stream.EventToolCall, ToolCall: &stream.ToolCall{
			ID:        res.CallID,
			Name:      res.Name,
			Status:    stream.ToolCallResult,
			Arguments: res.Arguments,
			Result:    res.Text,
		}}
		if err := emit(sink, done); err != nil {
			return nil, nil, err
		}

		responses = append(responses, llm.FunctionResponsePart(res.Name, map[string]any{"result": res.Text}))
		roundTools = append(roundTools, stream.RoundTool{Name: res.Name, ClientRendered: res.ClientRendered})
	}
	return responses, roundTools, nil
}

// persistTurn appends the accumulated assistant turn to the conversation log.
func (o *Orchestrator) persistTurn(ctx context.Context, conversationID string, acc *turnAccumulator) error {
	return o.msgs.Append(ctx, &storage.Message{
		ConversationID: conversationID,
		Role:           storage.RoleAssistant,
		Content:        acc.text.String(),
		ToolResults:    toolResultRecords(acc.toolResults),
		Citations:      citationRecords(acc.citations),
	})
}

func emit(sink stream.Sink, ev stream.Event) error {
	if err := sink.Send(ev); err != nil {
		return fmt.Errorf("%w: %v", errStreamClosed, err)
	}
	return nil
}

func roundEvent(index int, status string, roundTools []stream.RoundTool) stream.Event {
	return stream.Event{Type: stream.EventRound, Round: &stream.Round{
		Index:  index,
		Status: status,
		Tools:  roundTools,
	}}
}

// emitDataSources reports each retrieval backend that ran. The graph backend
// only appears when a lookup was actually attempted.
func emitDataSources(sink stream.Sink, res *retrieval.Result) error {
	vector := &stream.DataSource{Name: "vector", Status: "ok"}
	if res.VectorErr != nil {
		vector.Status = "unavailable"
		vector.Detail = res.VectorErr.Error()
	}
	if err := emit(sink, stream.Event{Type: stream.EventDataSource, DataSource: vector}); err != nil {
		return err
	}

	if res.Graph == nil && res.GraphErr == nil {
		return nil
	}
	graph := &stream.DataSource{Name: "graph", Status: "ok"}
	if res.GraphErr != nil {
		graph.Status = "unavailable"
		graph.Detail = res.GraphErr.Error()
	}
	return emit(sink, stream.Event{Type: stream.EventDataSource, DataSource: graph})
}

// recentToolNames collects the tool names invoked by the most recent
// assistant message. Only the immediately preceding assistant turn matters
// for continuation signals.
func recentToolNames(history []storage.Message) []string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != storage.RoleAssistant {
			continue
		}
		names := make([]string, 0, len(history[i].ToolResults))
		for _, tr := range history[i].ToolResults {
			names = append(names, tr.Name)
		}
		return names
	}
	return nil
}

// modelTurns converts the persisted log to model history. Persisted turns are
// replayed as plain text; roles other than user and assistant are skipped.
func modelTurns(history []storage.Message) []llm.Message {
	turns := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		var role llm.Role
		switch msg.Role {
		case storage.RoleUser:
			role = llm.RoleUser
		case storage.RoleAssistant:
			role = llm.RoleModel
		default:
			continue
		}
		if msg.Content == "" {
			continue
		}
		turns = append(turns, llm.TextMessage(role, msg.Content))
	}
	return turns
}

func toolResultRecords(results []tools.Result) []storage.ToolResultRecord {
	if len(results) == 0 {
		return nil
	}
	records := make([]storage.ToolResultRecord, 0, len(results))
	for _, res := range results {
		records = append(records, storage.ToolResultRecord{
			CallID:         res.CallID,
			Name:           res.Name,
			Arguments:      res.Arguments,
			Text:           res.Text,
			ClientRendered: res.ClientRendered,
		})
	}
	return records
}

func citationRecords(citations []llm.Citation) []storage.CitationRecord {
	if len(citations) == 0 {
		return nil
	}
	records := make([]storage.CitationRecord, 0, len(citations))
	for _, c := range citations {
		records = append(records, storage.CitationRecord{
			SourceKey: c.SourceKey,
			Title:     c.Title,
			URI:       c.URI,
		})
	}
	return records
}
