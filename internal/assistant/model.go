package assistant

import (
	"context"
	"time"
)

// Turn is one prior exchange fed back to the model as rolling history.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Request is a single model invocation. When CacheName is set the static
// instructions live server-side and StaticInstructions is left empty;
// otherwise the full static block is sent inline.
type Request struct {
	StaticInstructions string
	CacheName          string
	DynamicContext     string
	History            []Turn
	UserMessage        string
}

// Response is what the model produced for one turn: free text, zero or
// more structured action invocations, and the model id that served it.
type Response struct {
	Text  string
	Model string
	Calls []ActionCall
}

// ModelClient abstracts the language model provider.
type ModelClient interface {
	// GenerateResponse runs one turn. Implementations must honor ctx
	// deadlines; any failure is surfaced as an error so callers can
	// degrade to simulated mode.
	GenerateResponse(ctx context.Context, req Request) (*Response, error)

	// CreateCache registers the static instructions plus tool schema with
	// the provider and returns an opaque handle valid for ttl.
	CreateCache(ctx context.Context, staticInstructions string, ttl time.Duration) (string, error)

	// ValidateCache probes whether a handle is still live.
	ValidateCache(ctx context.Context, name string) bool
}
