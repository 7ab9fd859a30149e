// Package graphstore queries a Neo4j knowledge graph for entities related to
// a user query. Results feed prompt composition only; nothing here writes to
// the graph.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"promptvault/internal/contextutil"
)

// Entity is one matched graph node.
type Entity struct {
	Name   string
	Labels []string
	Props  map[string]any
}

// Relationship is one edge touching a matched node.
type Relationship struct {
	From string
	Type string
	To   string
}

// Result holds the capped output of one graph lookup.
type Result struct {
	Entities      []Entity
	Relationships []Relationship
}

// GraphStore is the lookup interface consumed by the retrieval gateway.
type GraphStore interface {
	// Lookup matches nodes whose name or labels reference any of the given
	// terms and returns them with their relationships, up to a fixed cap.
	Lookup(ctx context.Context, terms []string) (*Result, error)
}

const lookupQuery = `
UNWIND $terms AS term
MATCH (n)
WHERE toLower(coalesce(n.name, '')) CONTAINS term
   OR any(label IN labels(n) WHERE toLower(label) CONTAINS term)
OPTIONAL MATCH (n)-[r]-(m)
RETURN DISTINCT n, r, m
LIMIT $limit`

// Neo4jStore implements GraphStore against a Neo4j database.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	limit  int
}

// NewNeo4jStore creates a store and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, username, password string, resultCap int) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}
	if resultCap <= 0 {
		resultCap = 25
	}
	return &Neo4jStore{driver: driver, limit: resultCap}, nil
}

// Lookup issues a single query matching nodes against the candidate terms.
func (s *Neo4jStore) Lookup(ctx context.Context, terms []string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(terms) == 0 {
		return &Result{}, nil
	}

	eager, err := neo4j.ExecuteQuery(ctx, s.driver, lookupQuery,
		map[string]any{"terms": terms, "limit": s.limit},
		neo4j.EagerResultTransformer)
	if err != nil {
		logger.ErrorContext(ctx, "graph lookup failed", "terms", terms, "error", err)
		return nil, fmt.Errorf("failed to query graph: %w", err)
	}

	result := &Result{}
	seenNodes := make(map[string]bool)
	for _, record := range eager.Records {
		node, nodeOK := record.Values[0].(neo4j.Node)
		if nodeOK {
			if name := nodeName(node); !seenNodes[name] {
				seenNodes[name] = true
				result.Entities = append(result.Entities, Entity{
					Name:   name,
					Labels: node.Labels,
					Props:  node.Props,
				})
			}
		}

		rel, relOK := record.Values[1].(neo4j.Relationship)
		other, otherOK := record.Values[2].(neo4j.Node)
		if nodeOK && relOK && otherOK {
			result.Relationships = append(result.Relationships, Relationship{
				From: nodeName(node),
				Type: rel.Type,
				To:   nodeName(other),
			})
		}
	}

	logger.DebugContext(ctx, "graph lookup completed",
		"terms", terms, "entities", len(result.Entities), "relationships", len(result.Relationships))
	return result, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func nodeName(node neo4j.Node) string {
	if name, ok := node.Props["name"].(string); ok && name != "" {
		return name
	}
	return node.ElementId
}
