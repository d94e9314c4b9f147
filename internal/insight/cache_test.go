package insight

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/store"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewCache(st, ttl, zerolog.Nop()), st
}

func TestGetOrGenerateMissGeneratesAndPersists(t *testing.T) {
	ctx := context.Background()
	cache, st := newTestCache(t, time.Hour)

	calls := 0
	got, err := cache.GetOrGenerate(ctx, "u1", model.InsightFinancialOverview, func(ctx context.Context) (any, error) {
		calls++
		return map[string]string{"summary": "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("generate calls = %d, want 1", calls)
	}
	if got.UserID != "u1" || got.Type != model.InsightFinancialOverview {
		t.Errorf("insight = %+v", got)
	}
	if want := time.Hour; got.ExpiresAt.Sub(got.CreatedAt) != want {
		t.Errorf("ttl = %v, want %v", got.ExpiresAt.Sub(got.CreatedAt), want)
	}

	rows, err := st.ListInsights(ctx, "u1", model.InsightFinancialOverview)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%d err=%v, want 1 persisted row", len(rows), err)
	}
}

func TestGetOrGenerateHitSkipsGenerate(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, time.Hour)

	first, err := cache.GetOrGenerate(ctx, "u1", model.InsightTrends, func(ctx context.Context) (any, error) {
		return map[string]string{"trend": "up"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := cache.GetOrGenerate(ctx, "u1", model.InsightTrends, func(ctx context.Context) (any, error) {
		t.Fatal("generate must not run on a cache hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("hit returned a different row: %s vs %s", second.ID, first.ID)
	}
}

func TestGetOrGenerateExpiredRegeneratesAppendOnly(t *testing.T) {
	ctx := context.Background()
	cache, st := newTestCache(t, time.Hour)

	current := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	first, err := cache.GetOrGenerate(ctx, "u1", model.InsightFinancialOverview, func(ctx context.Context) (any, error) {
		return map[string]string{"gen": "1"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Advance past the TTL.
	current = current.Add(2 * time.Hour)

	second, err := cache.GetOrGenerate(ctx, "u1", model.InsightFinancialOverview, func(ctx context.Context) (any, error) {
		return map[string]string{"gen": "2"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expired entry must trigger regeneration")
	}

	rows, err := st.ListInsights(ctx, "u1", model.InsightFinancialOverview)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 (append-only, expired row kept)", len(rows))
	}

	var content map[string]string
	if err := json.Unmarshal(second.Content, &content); err != nil {
		t.Fatalf("unmarshal content: %v", err)
	}
	if content["gen"] != "2" {
		t.Errorf("content = %v, want the fresh generation", content)
	}
}

func TestLatestValidSkipsExpired(t *testing.T) {
	ctx := context.Background()
	cache, st := newTestCache(t, time.Hour)

	now := time.Now()
	expired := model.Insight{
		UserID: "u1", Type: model.InsightTrends,
		Content:   json.RawMessage(`{"old":true}`),
		CreatedAt: now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	if err := st.CreateInsight(ctx, &expired); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := cache.LatestValid(ctx, "u1", model.InsightTrends)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for expired-only cache, got %+v", got)
	}
}

func TestGetOrGenerateCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, time.Hour)

	var calls atomic.Int64
	gate := make(chan struct{})
	generate := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return map[string]string{"shared": "yes"}, nil
	}

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := cache.GetOrGenerate(ctx, "u1", model.InsightSavingsOpportunities, generate)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids[i] = got.ID
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("generate calls = %d, want 1 (collapsed)", n)
	}
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Errorf("concurrent callers got different rows: %v", ids)
		}
	}
}

func TestGetOrGenerateErrorNotCached(t *testing.T) {
	ctx := context.Background()
	cache, st := newTestCache(t, time.Hour)

	wantErr := errors.New("provider exploded")
	_, err := cache.GetOrGenerate(ctx, "u1", model.InsightTrends, func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected generate error, got %v", err)
	}

	rows, _ := st.ListInsights(ctx, "u1", model.InsightTrends)
	if len(rows) != 0 {
		t.Errorf("failed generation must not be cached, found %d rows", len(rows))
	}
}

func TestGetOrGenerateCancelledNotCached(t *testing.T) {
	cache, st := newTestCache(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := cache.GetOrGenerate(ctx, "u1", model.InsightTrends, func(ctx context.Context) (any, error) {
		cancel()
		return map[string]string{"late": "result"}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	rows, _ := st.ListInsights(context.Background(), "u1", model.InsightTrends)
	if len(rows) != 0 {
		t.Errorf("cancelled generation must not be cached, found %d rows", len(rows))
	}
}
