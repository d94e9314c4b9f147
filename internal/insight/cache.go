// Package insight caches generated insight payloads. Rows are append-only
// with a TTL: a read serves the newest still-valid row, and expiry triggers
// regeneration. Concurrent regeneration for the same user and insight type
// is collapsed to a single provider call.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/store"
)

// DefaultTTL is how long a generated insight stays valid.
const DefaultTTL = 24 * time.Hour

// GenerateFunc produces a fresh insight payload. The returned value is
// JSON-marshaled into the cached row's content.
type GenerateFunc func(ctx context.Context) (any, error)

// Cache wraps the store's insight rows with TTL and request-collapsing
// semantics.
type Cache struct {
	store store.Store
	ttl   time.Duration
	group singleflight.Group
	log   zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates a cache over st. A non-positive ttl falls back to
// DefaultTTL.
func NewCache(st store.Store, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store: st,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// LatestValid returns the newest unexpired insight of the given type, or
// nil when none exists. Expired rows are skipped, never deleted.
func (c *Cache) LatestValid(ctx context.Context, userID string, typ model.InsightType) (*model.Insight, error) {
	rows, err := c.store.ListInsights(ctx, userID, typ)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}

	now := c.now()
	for i := range rows {
		if rows[i].Valid(now) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// GetOrGenerate returns the cached insight when a valid one exists,
// otherwise runs generate, persists the result as a new row, and returns
// it. Concurrent misses for the same (user, type) share one generate call.
// A cancelled context aborts before anything is written.
func (c *Cache) GetOrGenerate(ctx context.Context, userID string, typ model.InsightType, generate GenerateFunc) (*model.Insight, error) {
	if cached, err := c.LatestValid(ctx, userID, typ); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	key := userID + "/" + string(typ)
	result, err, shared := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have finished while this one queued.
		if cached, err := c.LatestValid(ctx, userID, typ); err != nil {
			return nil, err
		} else if cached != nil {
			return cached, nil
		}
		return c.generateAndStore(ctx, userID, typ, generate)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug().Str("user_id", userID).Str("type", string(typ)).Msg("insight generation shared across concurrent requests")
	}
	return result.(*model.Insight), nil
}

func (c *Cache) generateAndStore(ctx context.Context, userID string, typ model.InsightType, generate GenerateFunc) (*model.Insight, error) {
	payload, err := generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled mid-generation: discard the result rather than cache
		// a row the caller never received.
		return nil, err
	}

	content, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal insight content: %w", err)
	}

	now := c.now()
	insight := &model.Insight{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Content:   content,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.store.CreateInsight(ctx, insight); err != nil {
		return nil, fmt.Errorf("persist insight: %w", err)
	}

	c.log.Info().Str("user_id", userID).Str("type", string(typ)).Time("expires_at", insight.ExpiresAt).Msg("insight generated")
	return insight, nil
}
