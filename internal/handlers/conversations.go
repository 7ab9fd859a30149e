package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"promptvault/internal/contextutil"
	"promptvault/internal/storage"
)

// ConversationHandler handles conversation creation and history reads.
type ConversationHandler struct {
	convs storage.ConversationStore
	msgs  storage.MessageStore
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(convs storage.ConversationStore, msgs storage.MessageStore) *ConversationHandler {
	return &ConversationHandler{convs: convs, msgs: msgs}
}

// CreateConversationRequest represents the HTTP request payload for creating
// a conversation. SystemPrompt is the library prompt the conversation is
// bound to; it is fixed for the conversation's lifetime.
type CreateConversationRequest struct {
	Title            string `json:"title"`
	SystemPrompt     string `json:"system_prompt"`
	RetrievalEnabled bool   `json:"retrieval_enabled"`
}

// ConversationResponse represents a conversation in HTTP responses.
type ConversationResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	RetrievalEnabled bool   `json:"retrieval_enabled"`
	CreatedAt        string `json:"created_at"`
}

// MessageResponse represents one persisted message in HTTP responses.
type MessageResponse struct {
	ID          string                     `json:"id"`
	Role        string                     `json:"role"`
	Content     string                     `json:"content"`
	ToolResults []storage.ToolResultRecord `json:"tool_results,omitempty"`
	Citations   []storage.CitationRecord   `json:"citations,omitempty"`
	CreatedAt   string                     `json:"created_at"`
}

// Create handles POST /api/conversations.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SystemPrompt == "" {
		writeError(w, http.StatusBadRequest, "Validation error: system_prompt is required")
		return
	}
	if req.Title == "" {
		req.Title = "Untitled conversation"
	}

	conv := &storage.Conversation{
		Title:            req.Title,
		SystemPrompt:     req.SystemPrompt,
		RetrievalEnabled: req.RetrievalEnabled,
		SubjectID:        r.Header.Get(subjectHeader),
	}
	if err := h.convs.Create(ctx, conv); err != nil {
		logger.ErrorContext(ctx, "failed to create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	logger.InfoContext(ctx, "conversation created", "conversation_id", conv.ID)
	writeJSON(w, http.StatusCreated, ConversationResponse{
		ID:               conv.ID,
		Title:            conv.Title,
		RetrievalEnabled: conv.RetrievalEnabled,
		CreatedAt:        conv.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ListMessages handles GET /api/conversations/{id}/messages.
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	conversationID := chi.URLParam(r, "id")

	if _, err := h.convs.Get(ctx, conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	messages, err := h.msgs.ListByConversation(ctx, conversationID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, MessageResponse{
			ID:          msg.ID,
			Role:        msg.Role,
			Content:     msg.Content,
			ToolResults: msg.ToolResults,
			Citations:   msg.Citations,
			CreatedAt:   msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
