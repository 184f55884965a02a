package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/logging"
)

// CatalogErrorMessage is shown when the listing cannot be fetched.
const CatalogErrorMessage = "Failed to load products. Please try again."

// CatalogSnapshot is a copy of the catalog view model at a point in time.
type CatalogSnapshot struct {
	Status              Status
	Items               []catalog.Item
	Query               string
	Message             string
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// Catalog lists one category and filters it by a live search query.
type Catalog struct {
	fetcher  catalog.Fetcher
	favs     Favorites
	category string
	logger   *zap.Logger

	mu      sync.RWMutex
	snap    CatalogSnapshot
	tasks   tracker
	memo    []catalog.Item
	memoOK  bool
	memoRun int // recomputations, for tests
}

// NewCatalog returns a model in the loading state. Nothing is fetched until
// Load or Begin/Run.
func NewCatalog(fetcher catalog.Fetcher, favs Favorites, category string, logger *zap.Logger) *Catalog {
	return &Catalog{
		fetcher:  fetcher,
		favs:     favs,
		category: category,
		logger:   logging.OrNop(logger).Named("catalog"),
		snap:     CatalogSnapshot{Status: StatusLoading},
	}
}

// Begin enters the loading state and cancels any attempt in flight. The
// previous listing is dropped.
func (c *Catalog) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tasks.closed {
		return 0
	}
	t := c.tasks.begin()
	c.snap.Status = StatusLoading
	c.snap.Items = nil
	c.snap.Message = ""
	c.snap.LastError = nil
	c.memoOK = false
	return t
}

// Run fetches the listing for t and commits it if t is still current.
func (c *Catalog) Run(ctx context.Context, t Ticket) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	ok := c.tasks.attach(t, cancel)
	c.mu.Unlock()
	if !ok {
		return ErrDiscarded
	}

	start := time.Now()
	items, err := c.fetcher.FetchCategory(ctx, c.category)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tasks.finish(t) {
		c.logger.Debug("discarding stale catalog result", zap.Uint64("ticket", uint64(t)))
		return ErrDiscarded
	}

	c.snap.LastUpdated = time.Now()
	if err != nil {
		c.snap.Status = StatusError
		c.snap.Message = CatalogErrorMessage
		c.snap.LastError = err
		c.snap.ConsecutiveFailures++
		c.logger.Warn("catalog fetch failed",
			zap.String("category", c.category),
			zap.Int("failures", c.snap.ConsecutiveFailures),
			zap.Error(err),
		)
		return fmt.Errorf("fetch catalog: %w", err)
	}

	c.snap.Status = StatusReady
	c.snap.Items = cloneItems(items)
	c.snap.Message = ""
	c.snap.LastError = nil
	c.snap.ConsecutiveFailures = 0
	c.memoOK = false
	c.logger.Info("catalog loaded",
		zap.String("category", c.category),
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Load is Run(ctx, Begin()).
func (c *Catalog) Load(ctx context.Context) error {
	return c.Run(ctx, c.Begin())
}

// Retry refetches from scratch unless a fetch is already in flight.
func (c *Catalog) Retry(ctx context.Context) error {
	t, ok := c.BeginRetry()
	if !ok {
		return nil
	}
	return c.Run(ctx, t)
}

// BeginRetry is the non-blocking half of Retry.
func (c *Catalog) BeginRetry() (Ticket, bool) {
	c.mu.RLock()
	busy := c.tasks.inFlight || c.tasks.closed
	c.mu.RUnlock()
	if busy {
		return 0, false
	}
	return c.Begin(), true
}

// SetQuery replaces the search query.
func (c *Catalog) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q == c.snap.Query {
		return
	}
	c.snap.Query = q
	c.memoOK = false
}

// Filtered returns the items matching the current query. The result is
// recomputed only after the listing or the query changes.
func (c *Catalog) Filtered() []catalog.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.memoOK {
		c.memo = Filter(c.snap.Items, c.snap.Query)
		c.memoOK = true
		c.memoRun++
	}
	return cloneItems(c.memo)
}

// Snapshot returns a copy of the current state.
func (c *Catalog) Snapshot() CatalogSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.snap
	snap.Items = cloneItems(c.snap.Items)
	return snap
}

// ToggleFavorite flips id in the favorites store.
func (c *Catalog) ToggleFavorite(ctx context.Context, id int64) bool {
	return c.favs.Toggle(ctx, id)
}

// IsFavorite reports whether id is a favorite.
func (c *Catalog) IsFavorite(id int64) bool {
	return c.favs.IsFavorite(id)
}

// Close cancels any fetch in flight. Later results are discarded.
func (c *Catalog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks.close()
}

// Filter keeps items whose title or description contains q, ignoring case.
// An empty q keeps everything.
func Filter(items []catalog.Item, q string) []catalog.Item {
	if q == "" {
		return cloneItems(items)
	}
	needle := strings.ToLower(q)
	var out []catalog.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), needle) ||
			strings.Contains(strings.ToLower(it.Description), needle) {
			out = append(out, it)
		}
	}
	return out
}

func cloneItems(items []catalog.Item) []catalog.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catalog.Item, len(items))
	copy(dup, items)
	return dup
}
