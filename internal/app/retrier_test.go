package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/favorites"
	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

// flakyFetcher fails the first n listing calls.
type flakyFetcher struct {
	failFirst int32
	calls     atomic.Int32
}

func (f *flakyFetcher) FetchCategory(context.Context, string) ([]catalog.Item, error) {
	if f.calls.Add(1) <= f.failFirst {
		return nil, errors.New("unreachable")
	}
	return []catalog.Item{{ID: 1, Title: "Chair"}}, nil
}

func (f *flakyFetcher) FetchItem(context.Context, int64) (catalog.ItemDetail, error) {
	return catalog.ItemDetail{}, errors.New("not used")
}

func TestRetryOnce_OnlyRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	f := &flakyFetcher{failFirst: 2}
	cat := state.NewCatalog(f, favorites.NewStore(kv.NewMemory(), nil), "furniture", nil)
	base := time.Second

	_ = cat.Load(ctx)
	if got := cat.Snapshot().Status; got != state.StatusError {
		t.Fatalf("Status = %v, want error", got)
	}

	if got := retryOnce(ctx, cat, base, zap.NewNop()); got != 4*time.Second {
		t.Fatalf("delay after second failure = %v, want 4s", got)
	}
	if got := retryOnce(ctx, cat, base, zap.NewNop()); got != base {
		t.Fatalf("delay after recovery = %v, want %v", got, base)
	}
	if got := cat.Snapshot().Status; got != state.StatusReady {
		t.Fatalf("Status = %v, want ready", got)
	}

	calls := f.calls.Load()
	retryOnce(ctx, cat, base, zap.NewNop())
	if f.calls.Load() != calls {
		t.Fatalf("retryOnce fetched while ready")
	}
}
