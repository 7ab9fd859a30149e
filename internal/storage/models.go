package storage

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread bound to a library prompt. RetrievalEnabled
// is a static per-conversation flag, not a per-message decision.
type Conversation struct {
	ID               string
	Title            string
	SystemPrompt     string
	RetrievalEnabled bool
	SubjectID        string
	CreatedAt        time.Time
}

// Message is one immutable turn in a conversation. Assistant messages carry
// the tool results and citations needed to reconstruct the UI.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	ToolResults    []ToolResultRecord
	Citations      []CitationRecord
	CreatedAt      time.Time
}

// ToolResultRecord is one persisted tool invocation result.
type ToolResultRecord struct {
	CallID         string         `json:"call_id"`
	Name           string         `json:"name"`
	Arguments      map[string]any `json:"arguments,omitempty"`
	Text           string         `json:"text,omitempty"`
	ClientRendered bool           `json:"client_rendered"`
}

// CitationRecord is one persisted citation entry.
type CitationRecord struct {
	SourceKey string `json:"source_key"`
	Title     string `json:"title,omitempty"`
	URI       string `json:"uri,omitempty"`
}
