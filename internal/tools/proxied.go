package tools

import (
	"context"
	"errors"
	"fmt"
)

// unavailableText is the static result returned for every proxied call once
// connection setup has failed for the turn.
const unavailableText = "The external tool service is currently unavailable. Answer from your own knowledge and let the user know the tool could not be reached."

// ProxiedHandler forwards invocations over the turn's protocol session. A
// call that errors produces a result whose text is the error message; the
// model sees it as ordinary tool output, not an engine failure.
type ProxiedHandler struct {
	session ProtocolSession
}

// NewProxiedHandler creates a handler backed by the given session.
func NewProxiedHandler(session ProtocolSession) *ProxiedHandler {
	return &ProxiedHandler{session: session}
}

// Invoke forwards the call. Never returns an engine-level failure.
func (h *ProxiedHandler) Invoke(ctx context.Context, req Request) Result {
	result := Result{
		CallID:    req.ID,
		Name:      req.Name,
		Arguments: req.Arguments,
	}

	if h.session == nil {
		result.Text = unavailableText
		return result
	}

	text, err := h.session.CallTool(ctx, req.Name, req.Arguments)
	switch {
	case errors.Is(err, ErrUnavailable):
		result.Text = unavailableText
	case err != nil:
		result.Text = fmt.Sprintf("Tool %q failed: %v", req.Name, err)
	default:
		result.Text = text
	}
	return result
}
