package llm

import (
	"strings"

	"google.golang.org/genai"
)

// partToGenAI converts a domain part to the SDK representation.
func partToGenAI(p Part) *genai.Part {
	switch p.Kind {
	case PartThought:
		return &genai.Part{Text: p.Text, Thought: true}
	case PartFunctionCall:
		call := &genai.FunctionCall{Name: p.Call.Name, Args: p.Call.Args}
		return &genai.Part{FunctionCall: call}
	case PartFunctionResponse:
		resp := &genai.FunctionResponse{Name: p.Response.Name, Response: p.Response.Response}
		return &genai.Part{FunctionResponse: resp}
	default:
		return &genai.Part{Text: p.Text}
	}
}

// partFromGenAI converts an SDK part to the domain sum type. The kind is
// decided here, once; nil or empty parts return ok=false.
func partFromGenAI(p *genai.Part) (Part, bool) {
	if p == nil {
		return Part{}, false
	}
	switch {
	case p.FunctionCall != nil:
		return Part{Kind: PartFunctionCall, Call: &FunctionCall{
			Name: p.FunctionCall.Name,
			Args: p.FunctionCall.Args,
		}}, true
	case p.FunctionResponse != nil:
		return Part{Kind: PartFunctionResponse, Response: &FunctionResponse{
			Name:     p.FunctionResponse.Name,
			Response: p.FunctionResponse.Response,
		}}, true
	case p.Thought:
		return Part{Kind: PartThought, Text: p.Text}, true
	case p.Text != "":
		return Part{Kind: PartText, Text: p.Text}, true
	default:
		return Part{}, false
	}
}

// messagesToGenAI converts the turn history to SDK contents. System messages
// are excluded; they travel via the system instruction instead.
func messagesToGenAI(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		content := &genai.Content{Role: string(msg.Role)}
		for _, part := range msg.Parts {
			content.Parts = append(content.Parts, partToGenAI(part))
		}
		if len(content.Parts) == 0 {
			continue
		}
		contents = append(contents, content)
	}
	return contents
}

// toGenAITools converts tool declarations into a single SDK tool carrying all
// function declarations.
func toGenAITools(decls []ToolDeclaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toGenAISchema(d.Parameters),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// toGenAISchema converts a JSON-schema map to the SDK schema type.
func toGenAISchema(schemaMap map[string]any) *genai.Schema {
	if schemaMap == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := schemaMap["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := schemaMap["description"].(string); ok {
		schema.Description = desc
	}
	if enum, ok := schemaMap["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if props, ok := schemaMap["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				schema.Properties[name] = toGenAISchema(propMap)
			}
		}
	}
	if required, ok := schemaMap["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if items, ok := schemaMap["items"].(map[string]any); ok {
		schema.Items = toGenAISchema(items)
	}

	return schema
}

// citationsFromGrounding extracts citation entries from grounding metadata.
// The source key is the URI when present, falling back to the title.
func citationsFromGrounding(md *genai.GroundingMetadata) []Citation {
	if md == nil || len(md.GroundingChunks) == 0 {
		return nil
	}

	citations := make([]Citation, 0, len(md.GroundingChunks))
	for _, chunk := range md.GroundingChunks {
		if chunk == nil {
			continue
		}
		var c Citation
		switch {
		case chunk.Web != nil:
			c = Citation{SourceKey: chunk.Web.URI, Title: chunk.Web.Title, URI: chunk.Web.URI}
		case chunk.RetrievedContext != nil:
			c = Citation{SourceKey: chunk.RetrievedContext.URI, Title: chunk.RetrievedContext.Title, URI: chunk.RetrievedContext.URI}
		default:
			continue
		}
		if c.SourceKey == "" {
			c.SourceKey = c.Title
		}
		if c.SourceKey == "" {
			continue
		}
		citations = append(citations, c)
	}
	return citations
}
