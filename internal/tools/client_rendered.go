package tools

import (
	"context"

	"promptvault/internal/llm"
)

// Client-rendered tool names. These are a UI-routing mechanism, not functions
// with side effects: the real result is the arguments themselves, which the
// client uses to render a widget.
const (
	ToolShowChart              = "show_chart"
	ToolGenerateDocument       = "generate_document"
	ToolAskClarifyingQuestions = "ask_clarifying_questions"
)

// placeholders maps each client-rendered tool to the acknowledgment string
// returned in place of a real result.
var placeholders = map[string]string{
	ToolShowChart:              "Chart rendered on the client from the provided specification.",
	ToolGenerateDocument:       "Document draft rendered on the client from the provided outline.",
	ToolAskClarifyingQuestions: "Clarifying questions presented to the user; their next message answers them.",
}

// clientDeclarations is the fixed declaration set presented to the model
// alongside discovered proxied tools.
var clientDeclarations = []llm.ToolDeclaration{
	{
		Name:        ToolShowChart,
		Description: "Render an interactive chart for the user. Use when the user asks for a visualization of data.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chart_type": map[string]any{
					"type":        "string",
					"description": "Kind of chart to render.",
					"enum":        []any{"bar", "line", "pie", "scatter"},
				},
				"title": map[string]any{"type": "string", "description": "Chart title."},
				"data":  map[string]any{"type": "string", "description": "JSON-encoded series data."},
			},
			"required": []any{"chart_type", "data"},
		},
	},
	{
		Name:        ToolGenerateDocument,
		Description: "Produce a structured document draft for the user to edit. Use for drafting requests.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string", "description": "Document title."},
				"sections": map[string]any{"type": "string", "description": "JSON-encoded section outline with content."},
			},
			"required": []any{"title", "sections"},
		},
	},
	{
		Name:        ToolAskClarifyingQuestions,
		Description: "Ask the user a short list of clarifying questions before drafting. Use when requirements are ambiguous.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":        "array",
					"description": "Questions to present, in order.",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []any{"questions"},
		},
	},
}

// ClientRenderedHandler resolves invocations of the fixed tool set without
// any backend execution.
type ClientRenderedHandler struct{}

// NewClientRenderedHandler creates a handler for the fixed client-rendered set.
func NewClientRenderedHandler() *ClientRenderedHandler {
	return &ClientRenderedHandler{}
}

// Handles reports whether name belongs to the fixed set.
func (h *ClientRenderedHandler) Handles(name string) bool {
	_, ok := placeholders[name]
	return ok
}

// Declarations returns the fixed declaration set.
func (h *ClientRenderedHandler) Declarations() []llm.ToolDeclaration {
	decls := make([]llm.ToolDeclaration, len(clientDeclarations))
	copy(decls, clientDeclarations)
	return decls
}

// Invoke returns immediately with the tool's placeholder text. No external
// call is made.
func (h *ClientRenderedHandler) Invoke(_ context.Context, req Request) Result {
	text, ok := placeholders[req.Name]
	if !ok {
		text = "Rendered on the client."
	}
	return Result{
		CallID:         req.ID,
		Name:           req.Name,
		Arguments:      req.Arguments,
		Text:           text,
		ClientRendered: true,
	}
}
