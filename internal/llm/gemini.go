package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API for streaming completions and
// embeddings. It implements Streamer and Embedder.
type GeminiClient struct {
	client     *genai.Client
	model      string
	embedModel string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, model, embedModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		embedModel: embedModel,
	}, nil
}

// StreamGenerate issues one streaming completion request and forwards each
// delivered chunk to the callback. A transport-level failure surfaces as the
// first iteration error; unparseable or empty responses are skipped so the
// rest of the stream keeps flowing.
func (c *GeminiClient) StreamGenerate(ctx context.Context, req GenerateRequest, callback func(chunk Chunk) error) error {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if tools := toGenAITools(req.Tools); tools != nil {
		config.Tools = tools
	}

	contents := messagesToGenAI(req.History)

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("model stream failed: %w", err)
		}
		if resp == nil {
			continue
		}

		chunk := chunkFromResponse(resp)
		if len(chunk.Parts) == 0 && len(chunk.Citations) == 0 {
			continue
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}

	return nil
}

// chunkFromResponse flattens one streamed response into a chunk of typed
// parts plus any grounding citations attached to it.
func chunkFromResponse(resp *genai.GenerateContentResponse) Chunk {
	var chunk Chunk
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, raw := range candidate.Content.Parts {
			if part, ok := partFromGenAI(raw); ok {
				chunk.Parts = append(chunk.Parts, part)
			}
		}
		chunk.Citations = append(chunk.Citations, citationsFromGrounding(candidate.GroundingMetadata)...)
	}
	return chunk
}

// EmbedTexts generates embeddings for the given texts, one vector per input.
func (c *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding returned")
		}
		vectors = append(vectors, embedding.Values)
	}
	return vectors, nil
}
