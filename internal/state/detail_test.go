package state

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/five82/finder/internal/catalog"
)

func TestDetail_ImageFallsBackToThumbnail(t *testing.T) {
	f := &fakeFetcher{details: map[int64]catalog.ItemDetail{
		5: {Item: catalog.Item{ID: 5, Title: "Chair", ThumbnailURL: "x.png"}, Images: []string{}},
	}}
	d := NewDetail(f, newFavorites(), nil)

	if got := d.DisplayImage(); got != "" {
		t.Fatalf("DisplayImage before load = %q, want empty", got)
	}
	if err := d.Open(context.Background(), 5); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if got := d.DisplayImage(); got != "x.png" {
		t.Fatalf("DisplayImage = %q, want x.png", got)
	}
	if snap := d.Snapshot(); snap.Status != StatusReady || snap.ID != 5 || !snap.HasItem {
		t.Fatalf("snapshot = %#v, want ready item 5", snap)
	}
}

func TestDetail_SetIDOnlyRefetchesOnChangeOrError(t *testing.T) {
	f := &fakeFetcher{details: map[int64]catalog.ItemDetail{
		1: {Item: catalog.Item{ID: 1}, Images: []string{"a.png"}},
		2: {Item: catalog.Item{ID: 2}},
	}}
	d := NewDetail(f, newFavorites(), nil)
	ctx := context.Background()

	if err := d.Open(ctx, 1); err != nil {
		t.Fatalf("Open(1): %v", err)
	}
	if _, ok := d.SetID(1); ok {
		t.Fatalf("SetID with unchanged id should not refetch")
	}
	if err := d.Open(ctx, 2); err != nil {
		t.Fatalf("Open(2): %v", err)
	}
	if got := f.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2", got)
	}

	// Missing item fails, and the same id may then be retried.
	if err := d.Open(ctx, 9); err == nil {
		t.Fatalf("Open(9) returned nil error, want not found")
	}
	snap := d.Snapshot()
	if snap.Status != StatusError || snap.Message != DetailErrorMessage {
		t.Fatalf("snapshot = %v %q, want error with message", snap.Status, snap.Message)
	}
	f.details[9] = catalog.ItemDetail{Item: catalog.Item{ID: 9}}
	tk, ok := d.Retry()
	if !ok {
		t.Fatalf("Retry after error should start a fetch")
	}
	if err := d.Run(ctx, tk); err != nil {
		t.Fatalf("Run after retry: %v", err)
	}
	if got := d.Snapshot().Status; got != StatusReady {
		t.Fatalf("Status after retry = %v, want ready", got)
	}
}

func TestDetail_ChangingIDDiscardsEarlierFetch(t *testing.T) {
	f := &fakeFetcher{
		details: map[int64]catalog.ItemDetail{1: {Item: catalog.Item{ID: 1}}, 2: {Item: catalog.Item{ID: 2}}},
		gate:    make(chan struct{}),
	}
	d := NewDetail(f, newFavorites(), nil)

	first, _ := d.SetID(1)
	second, _ := d.SetID(2)
	close(f.gate)

	if err := d.Run(context.Background(), first); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Run(first) error = %v, want ErrDiscarded", err)
	}
	if err := d.Run(context.Background(), second); err != nil {
		t.Fatalf("Run(second): %v", err)
	}
	if got := d.Snapshot().Item.ID; got != 2 {
		t.Fatalf("committed item = %d, want 2", got)
	}
}

func TestDetail_ToggleFavoriteAndClose(t *testing.T) {
	favs := newFavorites()
	d := NewDetail(&fakeFetcher{details: map[int64]catalog.ItemDetail{3: {Item: catalog.Item{ID: 3}}}}, favs, nil)
	ctx := context.Background()

	if d.ToggleFavorite(ctx) {
		t.Fatalf("ToggleFavorite without an id should do nothing")
	}
	if err := d.Open(ctx, 3); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.ToggleFavorite(ctx) || !favs.IsFavorite(3) || !d.IsFavorite() {
		t.Fatalf("ToggleFavorite should favorite id 3")
	}

	d.Close()
	if _, ok := d.SetID(4); ok {
		t.Fatalf("SetID after Close should not start a fetch")
	}
}

func TestDetail_VisitAlwaysRefetches(t *testing.T) {
	f := &fakeFetcher{details: map[int64]catalog.ItemDetail{5: {Item: catalog.Item{ID: 5, Title: "v1"}}}}
	d := NewDetail(f, newFavorites(), nil)
	ctx := context.Background()

	for visit := 1; visit <= 2; visit++ {
		tk, ok := d.Visit(5)
		if !ok {
			t.Fatalf("visit %d: Visit refused", visit)
		}
		if err := d.Run(ctx, tk); err != nil {
			t.Fatalf("visit %d: Run: %v", visit, err)
		}
		d.Leave()
	}
	if got := f.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2", got)
	}
	if snap := d.Snapshot(); snap.HasItem || snap.ID != 0 {
		t.Fatalf("snapshot after Leave = %#v, want empty", snap)
	}
}

func TestDetail_LeaveDiscardsInFlightResult(t *testing.T) {
	f := &fakeFetcher{
		details: map[int64]catalog.ItemDetail{5: {Item: catalog.Item{ID: 5}}},
		gate:    make(chan struct{}),
	}
	d := NewDetail(f, newFavorites(), nil)

	tk, _ := d.Visit(5)
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background(), tk) }()
	for f.calls.Load() == 0 {
		runtime.Gosched()
	}

	d.Leave()
	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Run error = %v, want ErrDiscarded", err)
	}
	if snap := d.Snapshot(); snap.HasItem || snap.Status != StatusLoading {
		t.Fatalf("snapshot = %#v, want nothing committed", snap)
	}

	// A stale ticket can no longer start either.
	if err := d.Run(context.Background(), tk); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Run(stale) error = %v, want ErrDiscarded", err)
	}
}
