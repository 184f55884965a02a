package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/logging"
)

// DetailErrorMessage is shown when an item cannot be fetched.
const DetailErrorMessage = "Failed to load product details. Please try again."

// DetailSnapshot is a copy of the detail view model.
type DetailSnapshot struct {
	Status      Status
	ID          int64
	Item        catalog.ItemDetail
	HasItem     bool
	Message     string
	LastError   error
	LastUpdated time.Time
}

// Detail shows one catalog item, keyed by id.
type Detail struct {
	fetcher catalog.Fetcher
	favs    Favorites
	logger  *zap.Logger

	mu    sync.RWMutex
	snap  DetailSnapshot
	tasks tracker
}

// NewDetail returns a model with no item selected.
func NewDetail(fetcher catalog.Fetcher, favs Favorites, logger *zap.Logger) *Detail {
	return &Detail{
		fetcher: fetcher,
		favs:    favs,
		logger:  logging.OrNop(logger).Named("detail"),
		snap:    DetailSnapshot{Status: StatusLoading},
	}
}

// SetID selects id. It starts a new attempt when id differs from the current
// one, or when the last attempt for id failed, and reports whether the caller
// must Run the returned ticket.
func (d *Detail) SetID(id int64) (Ticket, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks.closed {
		return 0, false
	}
	if id == d.snap.ID && d.snap.Status != StatusError && (d.tasks.inFlight || d.snap.HasItem) {
		return 0, false
	}
	return d.beginLocked(id), true
}

// Visit starts a fresh attempt for id even when the same item is loaded.
// Screens call it on every mount.
func (d *Detail) Visit(id int64) (Ticket, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks.closed {
		return 0, false
	}
	return d.beginLocked(id), true
}

// Leave drops the loaded item and cancels the attempt in flight. A result
// that arrives afterwards is discarded.
func (d *Detail) Leave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks.closed {
		return
	}
	d.tasks.invalidate()
	d.snap = DetailSnapshot{Status: StatusLoading}
}

func (d *Detail) beginLocked(id int64) Ticket {
	t := d.tasks.begin()
	d.snap = DetailSnapshot{Status: StatusLoading, ID: id}
	return t
}

// Retry refetches the current id after a failure.
func (d *Detail) Retry() (Ticket, bool) {
	d.mu.RLock()
	id := d.snap.ID
	d.mu.RUnlock()
	return d.SetID(id)
}

// Run fetches the item for t and commits it if t is still current.
func (d *Detail) Run(ctx context.Context, t Ticket) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	ok := d.tasks.attach(t, cancel)
	id := d.snap.ID
	d.mu.Unlock()
	if !ok {
		return ErrDiscarded
	}

	item, err := d.fetcher.FetchItem(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.tasks.finish(t) {
		d.logger.Debug("discarding stale detail result", zap.Int64("id", id))
		return ErrDiscarded
	}

	d.snap.LastUpdated = time.Now()
	if err != nil {
		d.snap.Status = StatusError
		d.snap.Message = DetailErrorMessage
		d.snap.LastError = err
		d.logger.Warn("detail fetch failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("fetch item %d: %w", id, err)
	}

	d.snap.Status = StatusReady
	d.snap.Item = item
	d.snap.HasItem = true
	d.snap.Message = ""
	d.snap.LastError = nil
	return nil
}

// Open selects id and, when needed, runs the fetch to completion.
func (d *Detail) Open(ctx context.Context, id int64) error {
	t, ok := d.SetID(id)
	if !ok {
		return nil
	}
	return d.Run(ctx, t)
}

// Snapshot returns a copy of the current state.
func (d *Detail) Snapshot() DetailSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := d.snap
	snap.Item.Images = slices.Clone(d.snap.Item.Images)
	return snap
}

// DisplayImage returns the first gallery image, or the thumbnail when the
// gallery is empty. It is empty until an item is loaded.
func (d *Detail) DisplayImage() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.snap.HasItem {
		return ""
	}
	return d.snap.Item.DisplayImage()
}

// ToggleFavorite flips the selected id in the favorites store.
func (d *Detail) ToggleFavorite(ctx context.Context) bool {
	d.mu.RLock()
	id := d.snap.ID
	d.mu.RUnlock()
	if id <= 0 {
		return false
	}
	return d.favs.Toggle(ctx, id)
}

// IsFavorite reports whether the selected id is a favorite.
func (d *Detail) IsFavorite() bool {
	d.mu.RLock()
	id := d.snap.ID
	d.mu.RUnlock()
	return id > 0 && d.favs.IsFavorite(id)
}

// Close cancels any fetch in flight.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks.close()
}
