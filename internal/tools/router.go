package tools

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"promptvault/internal/contextutil"
	"promptvault/internal/llm"
)

// excludedProxiedTool is never presented to the model. The model cannot be
// given a generic web-search capability and custom function declarations at
// the same time; the engine keeps the function declarations.
const excludedProxiedTool = "web_search"

// Router owns the merged tool universe for the process: the fixed
// client-rendered set plus proxied tools discovered over the external
// protocol. Discovery runs at most once per process and tolerates failure by
// proceeding with zero proxied tools.
type Router struct {
	fixed   *ClientRenderedHandler
	factory SessionFactory

	discoverOnce sync.Once
	discovered   []llm.ToolDeclaration
}

// NewRouter creates a router. factory may be nil when no external tool
// protocol is configured; proxied calls then resolve to the unavailable
// result.
func NewRouter(factory SessionFactory) *Router {
	return &Router{
		fixed:   NewClientRenderedHandler(),
		factory: factory,
	}
}

// Declarations returns the full declaration list presented to the model:
// the fixed set merged with discovered proxied tools (may be empty).
func (r *Router) Declarations(ctx context.Context) []llm.ToolDeclaration {
	r.discoverOnce.Do(func() {
		if r.factory == nil {
			return
		}
		logger := contextutil.LoggerFromContext(ctx)

		session := r.factory()
		defer func() {
			_ = session.Close()
		}()

		listed, err := session.ListTools(ctx)
		if err != nil {
			logger.WarnContext(ctx, "proxied tool discovery failed, continuing without proxied tools", "error", err)
			return
		}

		for _, decl := range listed {
			if decl.Name == excludedProxiedTool {
				continue
			}
			if r.fixed.Handles(decl.Name) {
				logger.WarnContext(ctx, "proxied tool shadows a client-rendered tool, skipping", "tool", decl.Name)
				continue
			}
			r.discovered = append(r.discovered, decl)
		}
		logger.InfoContext(ctx, "proxied tools discovered", "count", len(r.discovered))
	})

	decls := r.fixed.Declarations()
	decls = append(decls, r.discovered...)
	return decls
}

// IsClientRendered reports whether name belongs to the fixed set.
func (r *Router) IsClientRendered(name string) bool {
	return r.fixed.Handles(name)
}

// TurnResolver creates the per-turn resolver. The returned resolver owns its
// protocol session exclusively; callers must Close it at turn end.
func (r *Router) TurnResolver() *Resolver {
	var session ProtocolSession
	if r.factory != nil {
		session = r.factory()
	}
	return &Resolver{
		fixed:   r.fixed,
		proxied: NewProxiedHandler(session),
		session: session,
	}
}

// Resolver routes invocations for a single turn. Lookup is keyed on tool
// name: fixed set first, everything else proxied.
type Resolver struct {
	fixed   *ClientRenderedHandler
	proxied *ProxiedHandler
	session ProtocolSession
}

// Resolve executes one invocation. It never fails; all errors are captured
// into the result text. A request without an id gets one minted here so the
// running/result event pair shares a stable id.
func (res *Resolver) Resolve(ctx context.Context, req Request) Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	var handler Handler = res.proxied
	if res.fixed.Handles(req.Name) {
		handler = res.fixed
	}
	return handler.Invoke(ctx, req)
}

// Close tears down the turn's protocol session, if one was opened.
func (res *Resolver) Close() error {
	if res.session == nil {
		return nil
	}
	return res.session.Close()
}
