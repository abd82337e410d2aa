package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// CachedRenderer wraps a Renderer with a Redis cache keyed by the cleaned
// text, so repeated replies (confirmations, the simulated-mode message)
// are synthesized once. Cache faults fall through to the inner renderer.
type CachedRenderer struct {
	inner  Renderer
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

type cachedAudio struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// NewCachedRenderer wraps inner with a Redis cache.
func NewCachedRenderer(inner Renderer, rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRenderer {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedRenderer{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(CleanText(text)))
	return "speech:wav:" + hex.EncodeToString(sum[:])
}

// Render returns the cached audio for text or synthesizes and stores it.
func (c *CachedRenderer) Render(ctx context.Context, text string) (string, string, error) {
	key := cacheKey(text)

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var hit cachedAudio
		if jsonErr := json.Unmarshal([]byte(raw), &hit); jsonErr == nil {
			return hit.Data, hit.MimeType, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("speech cache read failed", "error", err.Error())
	}

	data, mimeType, err := c.inner.Render(ctx, text)
	if err != nil {
		return "", "", err
	}

	entry, err := json.Marshal(cachedAudio{Data: data, MimeType: mimeType})
	if err != nil {
		return data, mimeType, nil
	}
	if err := c.rdb.Set(ctx, key, entry, c.ttl).Err(); err != nil {
		c.logger.Warn("speech cache write failed", "error", err.Error())
	}
	return data, mimeType, nil
}

var _ Renderer = (*CachedRenderer)(nil)
