// Package http wires the chi router for the API surface.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"promptvault/internal/handlers"
	"promptvault/internal/orchestrator"
	"promptvault/internal/storage"
	"promptvault/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	TurnService       orchestrator.TurnService
	ConversationStore storage.ConversationStore
	MessageStore      storage.MessageStore
	DB                *sql.DB
	VectorStore       vectorstore.VectorStore
	CollectionName    string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.TurnService, deps.ConversationStore, deps.MessageStore)
	convHandler := handlers.NewConversationHandler(deps.ConversationStore, deps.MessageStore)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Post("/conversations", convHandler.Create)
		r.Get("/conversations/{id}/messages", convHandler.ListMessages)
		r.Method(http.MethodPost, "/conversations/{id}/chat", chatHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
