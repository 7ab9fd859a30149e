package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"promptvault/internal/config"
	"promptvault/internal/graphstore"
	"promptvault/internal/http"
	"promptvault/internal/llm"
	"promptvault/internal/orchestrator"
	"promptvault/internal/retrieval"
	"promptvault/internal/storage"
	"promptvault/internal/tools"
	"promptvault/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	convRepo := storage.NewConversationRepo(db)
	msgRepo := storage.NewMessageRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	slog.Info("Qdrant client ready", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)

	// Initialize graph store (optional)
	var graphStore graphstore.GraphStore
	if cfg.Neo4jURI != "" {
		neo4jStore, err := graphstore.NewNeo4jStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, 0)
		if err != nil {
			log.Fatalf("Failed to connect to Neo4j: %v", err)
		}
		defer func() {
			_ = neo4jStore.Close(ctx)
		}()
		graphStore = neo4jStore
		slog.Info("Neo4j client ready", "uri", cfg.Neo4jURI)
	} else {
		slog.Info("Neo4j not configured, graph retrieval disabled")
	}

	// Create the model client (external service layer)
	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	slog.Info("Gemini client ready", "model", cfg.GeminiModel, "embedding_model", cfg.EmbeddingModel)

	// Create the tool router (MCP endpoint optional)
	var sessionFactory tools.SessionFactory
	if cfg.MCPEndpoint != "" {
		endpoint := cfg.MCPEndpoint
		sessionFactory = func() tools.ProtocolSession {
			return tools.NewMCPSession(endpoint)
		}
		slog.Info("MCP endpoint configured", "endpoint", endpoint)
	} else {
		slog.Info("MCP not configured, proxied tools disabled")
	}
	toolRouter := tools.NewRouter(sessionFactory)

	// Create the retrieval gateway
	gateway := retrieval.NewGateway(geminiClient, vectorStore, graphStore, cfg.QdrantCollection, cfg.RetrievalTopK)

	// Create the turn orchestrator
	turnService := orchestrator.New(geminiClient, toolRouter, gateway, convRepo, msgRepo, cfg.MaxRounds)
	slog.Info("Orchestrator initialized", "max_rounds", cfg.MaxRounds)

	// Create router with dependencies
	deps := &http.Deps{
		TurnService:       turnService,
		ConversationStore: convRepo,
		MessageStore:      msgRepo,
		DB:                db,
		VectorStore:       vectorStore,
		CollectionName:    cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// parseLogLevel maps the configured level name to a slog level, defaulting to
// info on unknown values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
