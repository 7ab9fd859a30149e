package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ConversationStore defines the interface for conversation storage operations.
type ConversationStore interface {
	// Create inserts a new conversation, generating an id if absent.
	Create(ctx context.Context, conv *Conversation) error
	// Get fetches a conversation by id. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Conversation, error)
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create inserts a new conversation.
func (r *ConversationRepo) Create(ctx context.Context, conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, system_prompt, retrieval_enabled, subject_id)
		 VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.SystemPrompt, conv.RetrievalEnabled, conv.SubjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, system_prompt, retrieval_enabled, subject_id, created_at
		 FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.Title, &conv.SystemPrompt, &conv.RetrievalEnabled, &conv.SubjectID, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	conv.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &conv, nil
}
