// Package prefs handles Finder display preferences.
// The theme mode is stored under kv.KeyThemeMode as "light" or "dark".
package prefs

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/logging"
)

// Mode is the display theme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode maps a stored value to a Mode. Anything unrecognized is Light.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == Dark {
		return Dark
	}
	return Light
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Store holds the theme mode. The in-memory value always changes on Toggle;
// a failed write is only logged.
type Store struct {
	kv     kv.Store
	logger *zap.Logger

	writeMu sync.Mutex

	mu          sync.RWMutex
	mode        Mode
	initialized bool
	observers   map[int]func(Mode)
	nextID      int
}

// NewStore returns a store in Light mode.
func NewStore(store kv.Store, logger *zap.Logger) *Store {
	return &Store{
		kv:        store,
		logger:    logging.OrNop(logger).Named("prefs"),
		mode:      Light,
		observers: make(map[int]func(Mode)),
	}
}

// Initialize reads the persisted mode once.
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

	mode := Light
	raw, found, err := s.kv.Get(ctx, kv.KeyThemeMode)
	switch {
	case err != nil:
		s.logger.Warn("read theme mode failed, using light", zap.Error(err))
	case found:
		mode = ParseMode(raw)
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.notify(mode)
}

// Mode returns the current theme mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Toggle switches the mode, persists it and returns the new value.
func (s *Store) Toggle(ctx context.Context) Mode {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.mode = s.mode.Next()
	mode := s.mode
	s.mu.Unlock()

	if err := s.kv.Set(ctx, kv.KeyThemeMode, string(mode)); err != nil {
		s.logger.Warn("persist theme mode failed", zap.Error(err), zap.String("mode", string(mode)))
	}
	s.notify(mode)
	return mode
}

// Subscribe registers fn for mode changes and returns a func that removes it.
func (s *Store) Subscribe(fn func(Mode)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(m Mode) {
	s.mu.RLock()
	fns := make([]func(Mode), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(m)
	}
}
