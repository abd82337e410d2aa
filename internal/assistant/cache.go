package assistant

import (
	"context"
	"time"

	"github.com/yarimal/ai-crm/pkg/logging"
)

// CacheManager decides, per chat, whether the static instructions travel
// inline or by server-side cache handle. Handles live in the model
// provider's account with their own TTL expiry; they can vanish at any
// moment, so every reuse is preceded by a liveness probe and a dead
// handle simply degrades to inline instructions.
type CacheManager struct {
	model  ModelClient
	ttl    time.Duration
	logger *logging.Logger
}

// NewCacheManager wires a manager over the given model client.
func NewCacheManager(model ModelClient, ttl time.Duration, logger *logging.Logger) *CacheManager {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CacheManager{model: model, ttl: ttl, logger: logger}
}

// Create registers the static instructions with the provider and returns
// the new handle. Failure is not an error condition for the turn; it
// returns "" and the caller sends instructions inline.
func (m *CacheManager) Create(ctx context.Context, staticInstructions string) string {
	name, err := m.model.CreateCache(ctx, staticInstructions, m.ttl)
	if err != nil {
		m.logger.Warn("instruction cache creation failed, sending instructions inline", "error", err.Error())
		return ""
	}
	m.logger.Debug("instruction cache created", "cache_name", name, "ttl", m.ttl.String())
	return name
}

// IsValid probes a stored handle. Any lookup failure counts as invalid so
// a stale handle is never referenced in a generation request.
func (m *CacheManager) IsValid(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	return m.model.ValidateCache(ctx, name)
}
