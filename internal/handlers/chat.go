package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"promptvault/internal/contextutil"
	"promptvault/internal/orchestrator"
	"promptvault/internal/storage"
	"promptvault/internal/stream"
)

// subjectHeader carries the opaque caller identity forwarded by the frontend.
// The engine never interprets it; it is stored for attribution only.
const subjectHeader = "X-Subject-ID"

// ChatHandler handles HTTP requests for streaming chat turns.
type ChatHandler struct {
	turns orchestrator.TurnService
	convs storage.ConversationStore
	msgs  storage.MessageStore
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(turns orchestrator.TurnService, convs storage.ConversationStore, msgs storage.MessageStore) *ChatHandler {
	return &ChatHandler{
		turns: turns,
		convs: convs,
		msgs:  msgs,
	}
}

// ChatRequest represents the HTTP request payload for a chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ServeHTTP handles POST /api/conversations/{id}/chat. The response is a
// Server-Sent Events stream; every frame is one engine event, and the stream
// always ends with the literal [DONE] frame.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	conversationID := chi.URLParam(r, "id")

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Validation error: message is required")
		return
	}

	// Validate the conversation before committing to a streaming response;
	// after the SSE headers are written the status code is fixed.
	if _, err := h.convs.Get(ctx, conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	// The user message joins the log before the turn runs so the model
	// history the orchestrator loads already contains it.
	userMsg := &storage.Message{
		ConversationID: conversationID,
		Role:           storage.RoleUser,
		Content:        req.Message,
	}
	if err := h.msgs.Append(ctx, userMsg); err != nil {
		logger.ErrorContext(ctx, "failed to append user message", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record message")
		return
	}

	// Set up Server-Sent Events headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writer, err := stream.NewWriter(w)
	if err != nil {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	defer writer.Terminate()

	_, err = h.turns.Run(ctx, orchestrator.TurnRequest{
		ConversationID: conversationID,
		SubjectID:      r.Header.Get(subjectHeader),
		Message:        req.Message,
	}, writer)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.InfoContext(ctx, "chat turn canceled by client", "conversation_id", conversationID)
			return
		}
		logger.ErrorContext(ctx, "chat turn failed", "error", err, "conversation_id", conversationID)

		var validationErr *orchestrator.ValidationError
		if errors.As(err, &validationErr) || errors.Is(err, orchestrator.ErrConversationNotFound) {
			// The orchestrator reports storage and model failures on the
			// stream itself; rejections it returns without emitting are
			// surfaced here so the stream never ends bare.
			_ = writer.Send(stream.Errorf(fmt.Sprintf("Request rejected: %v", err)))
		}
		return
	}
}
