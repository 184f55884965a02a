// Package favorites keeps the set of favorited catalog item ids.
//
// The whole set is rewritten to kv.KeyFavoriteIDs as a sorted JSON array
// after every change to it. Persistence failures are logged and the in-memory
// change stands.
package favorites

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/logging"
)

// Store is the favorites set. The zero value is not usable; call NewStore.
type Store struct {
	kv     kv.Store
	logger *zap.Logger

	writeMu sync.Mutex // one persist at a time, in mutation order

	mu          sync.RWMutex
	ids         map[int64]struct{}
	initialized bool
}

// NewStore returns an empty set backed by store.
func NewStore(store kv.Store, logger *zap.Logger) *Store {
	return &Store{
		kv:     store,
		logger: logging.OrNop(logger).Named("favorites"),
		ids:    make(map[int64]struct{}),
	}
}

// Initialize loads the persisted set once. Missing or malformed data yields
// an empty set.
// Mutations issued during hydration wait for it to finish.
func (s *Store) Initialize(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	ids := s.read(ctx)

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context) map[int64]struct{} {
	out := make(map[int64]struct{})
	raw, found, err := s.kv.Get(ctx, kv.KeyFavoriteIDs)
	if err != nil {
		s.logger.Warn("read favorites failed, starting empty", zap.Error(err))
		return out
	}
	if !found || raw == "" {
		return out
	}
	var list []int64
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("malformed favorites, starting empty", zap.Error(err))
		return out
	}
	for _, id := range list {
		out[id] = struct{}{}
	}
	return out
}

// Add marks id as a favorite. It is a no-op if id is already present.
func (s *Store) Add(ctx context.Context, id int64) {
	s.mutate(ctx, func(ids map[int64]struct{}) bool {
		if _, ok := ids[id]; ok {
			return false
		}
		ids[id] = struct{}{}
		return true
	})
}

// Remove unmarks id. It is a no-op if id is absent.
func (s *Store) Remove(ctx context.Context, id int64) {
	s.mutate(ctx, func(ids map[int64]struct{}) bool {
		if _, ok := ids[id]; !ok {
			return false
		}
		delete(ids, id)
		return true
	})
}

// Toggle flips membership of id and reports whether it is now a favorite.
func (s *Store) Toggle(ctx context.Context, id int64) bool {
	var now bool
	s.mutate(ctx, func(ids map[int64]struct{}) bool {
		if _, ok := ids[id]; ok {
			delete(ids, id)
			return true
		}
		ids[id] = struct{}{}
		now = true
		return true
	})
	return now
}

// IsFavorite reports membership without touching persistence.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the favorites in ascending order.
func (s *Store) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.ids)
}

// mutate applies fn and persists the set when fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func(map[int64]struct{}) bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	changed := fn(s.ids)
	snapshot := sortedIDs(s.ids)
	s.mu.Unlock()

	if changed {
		s.persist(ctx, snapshot)
	}
}

func (s *Store) persist(ctx context.Context, ids []int64) {
	data, err := json.Marshal(ids)
	if err != nil {
		s.logger.Error("encode favorites failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, kv.KeyFavoriteIDs, string(data)); err != nil {
		s.logger.Warn("persist favorites failed", zap.Error(err), zap.Int("count", len(ids)))
	}
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
