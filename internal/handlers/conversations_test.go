package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptvault/internal/storage"
)

func TestConversationHandler_Create(t *testing.T) {
	convs := &fakeConvStore{}
	handler := NewConversationHandler(convs, &fakeMsgStore{})

	body := `{"title":"Q3 planning","system_prompt":"You are a planner.","retrieval_enabled":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(body))
	req.Header.Set("X-Subject-ID", "user-42")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp ConversationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.ID == "" || resp.Title != "Q3 planning" || !resp.RetrievalEnabled {
		t.Errorf("response = %+v", resp)
	}

	if len(convs.created) != 1 {
		t.Fatalf("created %d conversations, want 1", len(convs.created))
	}
	saved := convs.created[0]
	if saved.SystemPrompt != "You are a planner." || saved.SubjectID != "user-42" {
		t.Errorf("saved conversation = %+v", saved)
	}
}

func TestConversationHandler_Create_RequiresSystemPrompt(t *testing.T) {
	handler := NewConversationHandler(&fakeConvStore{}, &fakeMsgStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConversationHandler_ListMessages(t *testing.T) {
	now := time.Now().UTC()
	convs := &fakeConvStore{conv: &storage.Conversation{ID: "conv-1", SystemPrompt: "x"}}
	msgs := &fakeMsgStore{history: []storage.Message{
		{ID: "m1", ConversationID: "conv-1", Role: storage.RoleUser, Content: "hello", CreatedAt: now},
		{
			ID: "m2", ConversationID: "conv-1", Role: storage.RoleAssistant, Content: "hi",
			ToolResults: []storage.ToolResultRecord{{CallID: "c1", Name: "show_chart", ClientRendered: true}},
			Citations:   []storage.CitationRecord{{SourceKey: "doc://handbook"}},
			CreatedAt:   now,
		},
	}}
	handler := NewConversationHandler(convs, msgs)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/conv-1/messages", nil)
	req = withURLParam(req, "id", "conv-1")
	rec := httptest.NewRecorder()

	handler.ListMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("response has %d messages, want 2", len(resp))
	}
	if resp[0].Role != storage.RoleUser || resp[1].Role != storage.RoleAssistant {
		t.Errorf("roles = %q, %q", resp[0].Role, resp[1].Role)
	}
	// Tool results and citations survive the round trip for UI reconstruction.
	if len(resp[1].ToolResults) != 1 || !resp[1].ToolResults[0].ClientRendered {
		t.Errorf("tool results = %+v", resp[1].ToolResults)
	}
	if len(resp[1].Citations) != 1 || resp[1].Citations[0].SourceKey != "doc://handbook" {
		t.Errorf("citations = %+v", resp[1].Citations)
	}
}

func TestConversationHandler_ListMessages_NotFound(t *testing.T) {
	handler := NewConversationHandler(&fakeConvStore{}, &fakeMsgStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/missing/messages", nil)
	req = withURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.ListMessages(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
