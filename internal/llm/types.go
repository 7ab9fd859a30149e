package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_streamer.go -package=mocks promptvault/internal/llm Streamer,Embedder

import "context"

// Role identifies the author of a message in the model turn history.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// PartKind discriminates the kinds of parts a model response decomposes into.
// The kind is decided once at parse time; consumers switch on it instead of
// probing optional fields.
type PartKind int

const (
	PartText PartKind = iota
	PartThought
	PartFunctionCall
	PartFunctionResponse
)

// FunctionCall is a model-requested tool invocation.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string
	Response map[string]any
}

// Part is one element of a model turn. Parts must survive a lossless round
// trip through the turn history: the model needs its own prior parts (thought
// parts included) replayed verbatim for multi-round tool calling to stay
// coherent.
type Part struct {
	Kind     PartKind
	Text     string            // PartText and PartThought
	Call     *FunctionCall     // PartFunctionCall
	Response *FunctionResponse // PartFunctionResponse
}

// TextPart builds a plain text part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// FunctionResponsePart builds a tool-result part.
func FunctionResponsePart(name string, response map[string]any) Part {
	return Part{Kind: PartFunctionResponse, Response: &FunctionResponse{Name: name, Response: response}}
}

// Message is one turn in the model conversation history.
type Message struct {
	Role  Role
	Parts []Part
}

// TextMessage builds a single-part text message.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{TextPart(text)}}
}

// Citation is one grounding attribution entry. SourceKey is the stable
// deduplication key.
type Citation struct {
	SourceKey string
	Title     string
	URI       string
}

// Chunk is one incrementally delivered piece of a streaming response.
type Chunk struct {
	Parts     []Part
	Citations []Citation
}

// ToolDeclaration describes one tool presented to the model. Parameters is a
// JSON-schema object.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// GenerateRequest carries everything one streaming completion call needs.
type GenerateRequest struct {
	SystemInstruction string
	History           []Message
	Tools             []ToolDeclaration
}

// Streamer is an interface for streaming model completions. This interface is
// defined from the orchestrator's perspective (consumer-first). The callback
// is invoked once per delivered chunk, in order; returning an error stops the
// stream.
type Streamer interface {
	StreamGenerate(ctx context.Context, req GenerateRequest, callback func(chunk Chunk) error) error
}

// Embedder generates embedding vectors for texts, one vector per input.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
