package assistant

import (
	"context"
	"time"
)

// SimulatedModeMessage is the fixed reply served when no model is
// configured or the model call fails.
const SimulatedModeMessage = "AI is in simulated mode. Please check GEMINI_API_KEY."

// SimulatedModel is the model id recorded on messages served without a
// real model call.
const SimulatedModel = "simulated"

// SimulatedClient is the degraded-mode ModelClient used when no API key
// is configured. It never invokes actions, so read endpoints and chat
// persistence keep working without model connectivity.
type SimulatedClient struct{}

func (SimulatedClient) GenerateResponse(ctx context.Context, req Request) (*Response, error) {
	return &Response{Text: SimulatedModeMessage, Model: SimulatedModel}, nil
}

func (SimulatedClient) CreateCache(ctx context.Context, staticInstructions string, ttl time.Duration) (string, error) {
	return "", nil
}

func (SimulatedClient) ValidateCache(ctx context.Context, name string) bool {
	return false
}
