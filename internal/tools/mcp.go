package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"promptvault/internal/llm"
)

// ErrUnavailable is returned by protocol calls after connection setup has
// failed. The connection is attempted at most once per session; later calls
// fail fast instead of retrying.
var ErrUnavailable = errors.New("tool protocol unavailable")

// ProtocolSession is a session-scoped connection to the external tool
// protocol. This interface is defined from the router's perspective so tests
// can substitute a fake.
type ProtocolSession interface {
	// ListTools enumerates the tools the external process exposes.
	ListTools(ctx context.Context) ([]llm.ToolDeclaration, error)
	// CallTool forwards one invocation and returns the flattened result text.
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	// Close tears the session down.
	Close() error
}

// SessionFactory opens a new protocol session. Each chat turn owns exactly
// one session; it is never reused across turns.
type SessionFactory func() ProtocolSession

// MCPSession implements ProtocolSession over the Model Context Protocol's
// streamable HTTP transport. The session id returned by initialize rides a
// transport header on every subsequent call; the SDK transport manages that.
type MCPSession struct {
	endpoint string
	client   *mcpsdk.Client

	once       sync.Once
	session    *mcpsdk.ClientSession
	connectErr error
}

// NewMCPSession creates a session for the given streamable HTTP endpoint.
// The connection is opened lazily on first use.
func NewMCPSession(endpoint string) *MCPSession {
	impl := &mcpsdk.Implementation{Name: "promptvault", Version: "dev"}
	return &MCPSession{
		endpoint: endpoint,
		client:   mcpsdk.NewClient(impl, nil),
	}
}

// ensureConnected performs the initialize handshake at most once. A failed
// handshake pins every later call to ErrUnavailable.
func (s *MCPSession) ensureConnected(ctx context.Context) error {
	s.once.Do(func() {
		transport := &mcpsdk.StreamableClientTransport{Endpoint: s.endpoint}
		session, err := s.client.Connect(ctx, transport, nil)
		if err != nil {
			s.connectErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		s.session = session
	})
	return s.connectErr
}

// ListTools enumerates available tools via the list call.
func (s *MCPSession) ListTools(ctx context.Context) ([]llm.ToolDeclaration, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	var decls []llm.ToolDeclaration
	for tool, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		decls = append(decls, declarationFromTool(tool))
	}
	return decls, nil
}

// CallTool forwards one invocation. Tool-level errors (IsError results) are
// returned as ordinary errors for the caller to fold into result text.
func (s *MCPSession) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return "", err
	}

	result, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("tool call failed: %w", err)
	}

	text := flattenContent(result)
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return "", errors.New(text)
	}
	return text, nil
}

// Close shuts down the underlying session, if one was established.
func (s *MCPSession) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// declarationFromTool normalizes an SDK tool descriptor. The input schema is
// round-tripped through JSON to get a plain map.
func declarationFromTool(tool *mcpsdk.Tool) llm.ToolDeclaration {
	if tool == nil {
		return llm.ToolDeclaration{}
	}
	decl := llm.ToolDeclaration{Name: tool.Name, Description: tool.Description}
	if tool.InputSchema != nil {
		if raw, err := json.Marshal(tool.InputSchema); err == nil {
			params := map[string]any{}
			if err := json.Unmarshal(raw, &params); err == nil {
				decl.Parameters = params
			}
		}
	}
	return decl
}

// flattenContent concatenates the text content blocks of a call result.
func flattenContent(result *mcpsdk.CallToolResult) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text.Text)
		}
	}
	return b.String()
}
