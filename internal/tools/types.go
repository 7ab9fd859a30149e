// Package tools classifies and executes model-requested tool invocations.
//
// Two tool universes are merged into one declaration list presented to the
// model: a fixed set of client-rendered tools whose "execution" is returning
// a placeholder (the client renders a widget from the arguments), and a
// dynamically discovered set of proxied tools forwarded to an external
// process over the Model Context Protocol. The orchestrator never needs to
// know which universe served a given call.
package tools

import "context"

// Request is a model-emitted tool invocation.
type Request struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Result is the canonical outcome of either execution path. All failure is
// captured into Text; handlers never return an error.
type Result struct {
	CallID         string
	Name           string
	Arguments      map[string]any
	Text           string
	ClientRendered bool
}

// Handler executes one tool invocation. Implementations must not fail: any
// error is folded into the result text so the model can route around it.
type Handler interface {
	Invoke(ctx context.Context, req Request) Result
}
