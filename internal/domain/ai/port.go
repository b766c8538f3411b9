package ai

import "context"

// Request is one prompt sent to a text-completion backend.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks the backend for JSON-mode output when it supports one.
	JSON bool
}

// Completer is a single LLM backend. Implementations are built once at startup
// and shared by every request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
