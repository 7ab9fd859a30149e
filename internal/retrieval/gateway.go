// Package retrieval fans a query out to the vector store and (optionally)
// the knowledge graph and merges the results into flattened context text for
// prompt composition. Both paths degrade to empty results on failure; a
// retrieval problem never blocks a chat turn.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"promptvault/internal/contextutil"
	"promptvault/internal/graphstore"
	"promptvault/internal/llm"
	"promptvault/internal/vectorstore"
)

const (
	// DefaultTopK bounds the vector search when no K is configured.
	DefaultTopK = 5

	// minTermLength filters query tokens used as graph entity candidates.
	minTermLength = 4
	// maxTerms caps the candidate count per lookup.
	maxTerms = 5
)

// SourceRef locates a vector match within its source document.
type SourceRef struct {
	DocID string
	Path  string
}

// VectorMatch is one similarity hit with its flattened content.
type VectorMatch struct {
	Content   string
	Score     float32
	SourceRef SourceRef
}

// Result is the merged, ephemeral output of one retrieval pass. It exists
// only for the duration of prompt composition and is never persisted.
type Result struct {
	VectorMatches []VectorMatch
	Graph         *graphstore.Result

	// Per-backend failures, recorded for observability. A set error means
	// that path degraded to empty; it never aborts the turn.
	VectorErr error
	GraphErr  error
}

// Empty reports whether neither backend contributed anything.
func (r *Result) Empty() bool {
	return len(r.VectorMatches) == 0 && (r.Graph == nil || len(r.Graph.Entities) == 0)
}

// ContextText flattens the merged result for the model. The model only ever
// sees text, never structured retrieval data.
func (r *Result) ContextText() string {
	if r.Empty() {
		return ""
	}

	var b strings.Builder
	if len(r.VectorMatches) > 0 {
		b.WriteString("Relevant reference material:\n")
		for i, match := range r.VectorMatches {
			fmt.Fprintf(&b, "[%d] (%s%s) %s\n", i+1, match.SourceRef.DocID, pathSuffix(match.SourceRef.Path), match.Content)
		}
	}
	if r.Graph != nil && len(r.Graph.Entities) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Related entities:\n")
		for _, entity := range r.Graph.Entities {
			fmt.Fprintf(&b, "- %s (%s)\n", entity.Name, strings.Join(entity.Labels, ", "))
		}
		for _, rel := range r.Graph.Relationships {
			fmt.Fprintf(&b, "- %s -[%s]-> %s\n", rel.From, rel.Type, rel.To)
		}
	}
	return b.String()
}

func pathSuffix(path string) string {
	if path == "" {
		return ""
	}
	return " " + path
}

// Gateway issues embedding, vector-search and graph queries for a single
// query string.
type Gateway struct {
	embedder   llm.Embedder
	vectors    vectorstore.VectorStore
	graph      graphstore.GraphStore
	collection string
	topK       int
}

// NewGateway creates a gateway. graph may be nil when no graph database is
// configured; graph lookups are then skipped entirely.
func NewGateway(embedder llm.Embedder, vectors vectorstore.VectorStore, graph graphstore.GraphStore, collection string, topK int) *Gateway {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Gateway{
		embedder:   embedder,
		vectors:    vectors,
		graph:      graph,
		collection: collection,
		topK:       topK,
	}
}

// Search runs the vector path and, when requested and configured, the graph
// path. The two run concurrently and both complete before Search returns:
// the composer needs both outcomes. Failures are captured on the result, not
// returned.
func (g *Gateway) Search(ctx context.Context, query string, includeGraph bool) *Result {
	logger := contextutil.LoggerFromContext(ctx)
	result := &Result{}

	var group errgroup.Group

	group.Go(func() error {
		matches, err := g.searchVectors(ctx, query)
		if err != nil {
			logger.WarnContext(ctx, "vector retrieval failed, degrading to empty", "error", err)
			result.VectorErr = err
			return nil
		}
		result.VectorMatches = matches
		return nil
	})

	if includeGraph && g.graph != nil {
		group.Go(func() error {
			graph, err := g.graph.Lookup(ctx, entityTerms(query))
			if err != nil {
				logger.WarnContext(ctx, "graph retrieval failed, degrading to empty", "error", err)
				result.GraphErr = err
				return nil
			}
			result.Graph = graph
			return nil
		})
	}

	// Join point: both paths have stored their outcome after Wait.
	_ = group.Wait()
	return result
}

// searchVectors embeds the query and runs the top-K similarity search.
func (g *Gateway) searchVectors(ctx context.Context, query string) ([]VectorMatch, error) {
	embeddings, err := g.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	hits, err := g.vectors.Search(ctx, g.collection, embeddings[0], g.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	matches := make([]VectorMatch, 0, len(hits))
	for _, hit := range hits {
		content, _ := hit.Meta["text"].(string)
		if content == "" {
			continue
		}
		docID, _ := hit.Meta["doc_id"].(string)
		path, _ := hit.Meta["heading_path"].(string)
		matches = append(matches, VectorMatch{
			Content: content,
			Score:   hit.Score,
			SourceRef: SourceRef{
				DocID: docID,
				Path:  path,
			},
		})
	}
	return matches, nil
}

// stopTerms are query tokens too generic to identify a graph entity.
var stopTerms = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"could": true, "from": true, "have": true, "into": true, "please": true,
	"should": true, "some": true, "tell": true, "that": true, "their": true,
	"them": true, "there": true, "these": true, "this": true, "what": true,
	"when": true, "where": true, "which": true, "will": true, "with": true,
	"would": true, "your": true,
}

// entityTerms derives candidate entity tokens from the query: lowercased,
// punctuation-trimmed, at least minTermLength runes, deduplicated, capped at
// maxTerms.
func entityTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool)
	terms := make([]string, 0, maxTerms)

	for _, field := range fields {
		term := strings.Trim(field, ".,;:!?\"'()[]{}")
		if len([]rune(term)) < minTermLength || stopTerms[term] || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}
