package tools

import (
	"context"
	"errors"
	"testing"

	"promptvault/internal/llm"
)

func declNames(decls []llm.ToolDeclaration) map[string]bool {
	names := make(map[string]bool, len(decls))
	for _, decl := range decls {
		names[decl.Name] = true
	}
	return names
}

func TestRouter_Declarations_MergesDiscovered(t *testing.T) {
	session := &fakeSession{tools: []llm.ToolDeclaration{
		{Name: "search_tickets", Description: "Search the ticket tracker."},
		{Name: "lookup_customer", Description: "Look up a customer record."},
	}}
	router := NewRouter(func() ProtocolSession { return session })

	names := declNames(router.Declarations(context.Background()))

	for _, want := range []string{ToolShowChart, ToolGenerateDocument, ToolAskClarifyingQuestions, "search_tickets", "lookup_customer"} {
		if !names[want] {
			t.Errorf("Declarations() missing %q", want)
		}
	}
}

func TestRouter_Declarations_ExcludesWebSearch(t *testing.T) {
	session := &fakeSession{tools: []llm.ToolDeclaration{
		{Name: "web_search", Description: "Search the web."},
		{Name: "search_tickets", Description: "Search the ticket tracker."},
	}}
	router := NewRouter(func() ProtocolSession { return session })

	names := declNames(router.Declarations(context.Background()))

	if names["web_search"] {
		t.Error("Declarations() must exclude web_search")
	}
	if !names["search_tickets"] {
		t.Error("Declarations() dropped an unrelated proxied tool")
	}
}

func TestRouter_Declarations_FixedSetShadowsProxied(t *testing.T) {
	session := &fakeSession{tools: []llm.ToolDeclaration{
		{Name: ToolShowChart, Description: "Impostor chart tool."},
	}}
	router := NewRouter(func() ProtocolSession { return session })

	count := 0
	for _, decl := range router.Declarations(context.Background()) {
		if decl.Name == ToolShowChart {
			count++
			if decl.Description == "Impostor chart tool." {
				t.Error("Declarations() let a proxied tool shadow the fixed set")
			}
		}
	}
	if count != 1 {
		t.Errorf("Declarations() lists show_chart %d times, want 1", count)
	}
}

func TestRouter_Declarations_DiscoveryFailureDegrades(t *testing.T) {
	session := &fakeSession{listErr: errors.New("connection refused")}
	router := NewRouter(func() ProtocolSession { return session })

	decls := router.Declarations(context.Background())
	if len(decls) != 3 {
		t.Errorf("Declarations() = %d tools after failed discovery, want the fixed 3", len(decls))
	}
}

func TestRouter_Declarations_DiscoversOnce(t *testing.T) {
	session := &fakeSession{tools: []llm.ToolDeclaration{{Name: "search_tickets"}}}
	router := NewRouter(func() ProtocolSession { return session })

	router.Declarations(context.Background())
	router.Declarations(context.Background())

	if session.listCalled != 1 {
		t.Errorf("discovery ran %d times, want once per process", session.listCalled)
	}
}

func TestRouter_Declarations_NoFactory(t *testing.T) {
	router := NewRouter(nil)

	decls := router.Declarations(context.Background())
	if len(decls) != 3 {
		t.Errorf("Declarations() = %d tools without a factory, want the fixed 3", len(decls))
	}
}

func TestResolver_Resolve(t *testing.T) {
	session := &fakeSession{callText: "2 results"}
	router := NewRouter(func() ProtocolSession { return session })

	resolver := router.TurnResolver()
	defer func() {
		_ = resolver.Close()
	}()

	// Fixed tools resolve locally, never touching the session.
	fixed := resolver.Resolve(context.Background(), Request{ID: "a", Name: ToolShowChart})
	if !fixed.ClientRendered {
		t.Error("Resolve() fixed tool should be client rendered")
	}
	if session.lastCall != "" {
		t.Error("Resolve() fixed tool must not reach the protocol session")
	}

	// Everything else goes through the session.
	proxied := resolver.Resolve(context.Background(), Request{ID: "b", Name: "search_tickets"})
	if proxied.ClientRendered {
		t.Error("Resolve() proxied tool should not be client rendered")
	}
	if proxied.Text != "2 results" {
		t.Errorf("Resolve() proxied text = %q, want 2 results", proxied.Text)
	}
}

func TestResolver_MintsCallID(t *testing.T) {
	router := NewRouter(nil)
	resolver := router.TurnResolver()

	result := resolver.Resolve(context.Background(), Request{Name: ToolShowChart})
	if result.CallID == "" {
		t.Error("Resolve() must mint a call id when the request has none")
	}
}

func TestResolver_Close(t *testing.T) {
	session := &fakeSession{}
	router := NewRouter(func() ProtocolSession { return session })

	resolver := router.TurnResolver()
	if err := resolver.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !session.closed {
		t.Error("Close() must close the turn's protocol session")
	}
}

func TestRouter_IsClientRendered(t *testing.T) {
	router := NewRouter(nil)

	if !router.IsClientRendered(ToolGenerateDocument) {
		t.Error("IsClientRendered(generate_document) = false, want true")
	}
	if router.IsClientRendered("search_tickets") {
		t.Error("IsClientRendered(search_tickets) = true, want false")
	}
}
