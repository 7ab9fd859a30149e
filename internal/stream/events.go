package stream

// EventType discriminates the kinds of events pushed to the client during a
// chat turn. Exactly one payload field of Event is populated per type.
type EventType string

const (
	EventIntent     EventType = "intent"
	EventStatus     EventType = "status"
	EventDataSource EventType = "data_source"
	EventRound      EventType = "round"
	EventText       EventType = "text"
	EventToolCall   EventType = "tool_call"
	EventSources    EventType = "sources"
	EventError      EventType = "error"
	EventDone       EventType = "done"
)

// Status values carried by status events.
const (
	StatusThinking    = "thinking"
	StatusGenerating  = "generating"
	StatusSearching   = "searching"
	StatusToolCalling = "tool_calling"
)

// Round status values.
const (
	RoundStarted  = "started"
	RoundComplete = "complete"
)

// Tool call status values. A "running" event for a call id is always followed
// by exactly one "result" event with the same id.
const (
	ToolCallRunning = "running"
	ToolCallResult  = "result"
)

// Event is the wire representation of one observable state transition.
type Event struct {
	Type       EventType   `json:"type"`
	Intent     string      `json:"intent,omitempty"`
	Status     string      `json:"status,omitempty"`
	DataSource *DataSource `json:"data_source,omitempty"`
	Round      *Round      `json:"round,omitempty"`
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	Sources    []Source    `json:"sources,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// DataSource reports the outcome of one retrieval backend.
type DataSource struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Round reports round-loop progress. Tools is populated on completion with
// the calls executed during the round.
type Round struct {
	Index  int         `json:"index"`
	Status string      `json:"status"`
	Tools  []RoundTool `json:"tools,omitempty"`
}

// RoundTool identifies one tool invoked during a round.
type RoundTool struct {
	Name           string `json:"name"`
	ClientRendered bool   `json:"client_rendered"`
}

// ToolCall reports the lifecycle of a single tool invocation.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
}

// Source is one deduplicated citation entry.
type Source struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// Sink receives events in emission order. Implementations must preserve
// ordering; Send returning an error means the consumer is gone and the
// producer should stop.
type Sink interface {
	Send(ev Event) error
}

// Intent builds an intent event.
func Intent(intent string) Event {
	return Event{Type: EventIntent, Intent: intent}
}

// Status builds a status event.
func Status(status string) Event {
	return Event{Type: EventStatus, Status: status}
}

// Text builds a text delta event.
func Text(delta string) Event {
	return Event{Type: EventText, Text: delta}
}

// Errorf builds an error event with a human-readable message.
func Errorf(msg string) Event {
	return Event{Type: EventError, Error: msg}
}

// Done builds the terminal marker event.
func Done() Event {
	return Event{Type: EventDone}
}
