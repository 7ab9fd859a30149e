package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestConversationRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db)
	ctx := context.Background()

	conv := &Conversation{
		Title:            "Q3 planning",
		SystemPrompt:     "You are a planner.",
		RetrievalEnabled: true,
		SubjectID:        "user-42",
	}
	if err := repo.Create(ctx, conv); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if conv.ID == "" {
		t.Fatal("Create() must generate an id")
	}

	got, err := repo.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != conv.Title || got.SystemPrompt != conv.SystemPrompt {
		t.Errorf("Get() = %+v, want %+v", got, conv)
	}
	if !got.RetrievalEnabled {
		t.Error("Get() RetrievalEnabled = false, want true")
	}
	if got.SubjectID != "user-42" {
		t.Errorf("Get() SubjectID = %q", got.SubjectID)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Get() CreatedAt is zero")
	}
}

func TestConversationRepo_GetNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMessageRepo_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	convRepo := NewConversationRepo(db)
	msgRepo := NewMessageRepo(db)
	ctx := context.Background()

	conv := &Conversation{Title: "t", SystemPrompt: "p"}
	if err := convRepo.Create(ctx, conv); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user := &Message{ConversationID: conv.ID, Role: RoleUser, Content: "show me a chart"}
	if err := msgRepo.Append(ctx, user); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	assistant := &Message{
		ConversationID: conv.ID,
		Role:           RoleAssistant,
		Content:        "Here you go.",
		ToolResults: []ToolResultRecord{{
			CallID:         "call-1",
			Name:           "show_chart",
			Arguments:      map[string]any{"chart_type": "bar"},
			Text:           "Chart rendered on the client from the provided specification.",
			ClientRendered: true,
		}},
		Citations: []CitationRecord{{SourceKey: "doc://handbook", Title: "Handbook"}},
	}
	if err := msgRepo.Append(ctx, assistant); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	messages, err := msgRepo.ListByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("ListByConversation() returned %d messages, want 2", len(messages))
	}

	if messages[0].Role != RoleUser || messages[1].Role != RoleAssistant {
		t.Errorf("message order wrong: %q then %q", messages[0].Role, messages[1].Role)
	}

	// Tool results and citations round-trip through their JSON columns.
	saved := messages[1]
	if len(saved.ToolResults) != 1 {
		t.Fatalf("ToolResults = %+v, want 1 record", saved.ToolResults)
	}
	tr := saved.ToolResults[0]
	if tr.CallID != "call-1" || tr.Name != "show_chart" || !tr.ClientRendered {
		t.Errorf("ToolResults[0] = %+v", tr)
	}
	if tr.Arguments["chart_type"] != "bar" {
		t.Errorf("ToolResults[0].Arguments = %v", tr.Arguments)
	}
	if len(saved.Citations) != 1 || saved.Citations[0].SourceKey != "doc://handbook" {
		t.Errorf("Citations = %+v", saved.Citations)
	}

	// The user message has no tool columns; they come back empty, not erroring.
	if len(messages[0].ToolResults) != 0 || len(messages[0].Citations) != 0 {
		t.Errorf("user message has unexpected payloads: %+v", messages[0])
	}
}

func TestMessageRepo_ListEmptyConversation(t *testing.T) {
	db := newTestDB(t)
	msgRepo := NewMessageRepo(db)

	messages, err := msgRepo.ListByConversation(context.Background(), "no-such-conv")
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("ListByConversation() = %d messages, want 0", len(messages))
	}
}
