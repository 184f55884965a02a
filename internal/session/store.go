// Package session owns the login state and the credential check in front of it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/logging"
)

// State is the in-memory session. UserID is non-empty iff Authenticated.
type State struct {
	Authenticated bool
	UserID        string
}

// Store persists the session under kv.KeyLoggedIn and kv.KeyUserEmail.
type Store struct {
	kv     kv.Store
	logger *zap.Logger

	writeMu sync.Mutex // serializes Login/Logout against each other

	mu          sync.RWMutex
	state       State
	initialized bool
	observers   map[int]func(State)
	nextID      int
}

// NewStore returns an unauthenticated store backed by store.
func NewStore(store kv.Store, logger *zap.Logger) *Store {
	return &Store{
		kv:        store,
		logger:    logging.OrNop(logger).Named("session"),
		observers: make(map[int]func(State)),
	}
}

// Initialize hydrates the session from persistence. Only the first call reads;
// an unreadable store leaves the session logged out.
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

	st := s.read(ctx)

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notify(st)
}

func (s *Store) read(ctx context.Context) State {
	flag, found, err := s.kv.Get(ctx, kv.KeyLoggedIn)
	if err != nil {
		s.logger.Warn("read login flag failed, treating as logged out", zap.Error(err))
		return State{}
	}
	if !found || flag != "true" {
		return State{}
	}
	email, found, err := s.kv.Get(ctx, kv.KeyUserEmail)
	if err != nil {
		s.logger.Warn("read user email failed, treating as logged out", zap.Error(err))
		return State{}
	}
	if !found || strings.TrimSpace(email) == "" {
		s.logger.Warn("login flag set without user email, treating as logged out")
		return State{}
	}
	return State{Authenticated: true, UserID: email}
}

// Login persists the authenticated session and then updates memory. On a
// persistence error the in-memory state is left unchanged.
func (s *Store) Login(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fmt.Errorf("login: %w", ErrMissingInput)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Set(ctx, kv.KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("persist login flag: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyUserEmail, identifier); err != nil {
		if rbErr := s.kv.Remove(ctx, kv.KeyLoggedIn); rbErr != nil {
			s.logger.Error("roll back login flag failed", zap.Error(rbErr))
		}
		return fmt.Errorf("persist user email: %w", err)
	}

	st := State{Authenticated: true, UserID: identifier}
	s.set(st)
	s.logger.Info("logged in", zap.String("user", identifier))
	return nil
}

// Logout removes both persisted keys and clears memory.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// The flag goes first: a crash in between leaves a stale email, which
	// hydration ignores without the flag.
	err := s.kv.Remove(ctx, kv.KeyLoggedIn)
	if err != nil {
		return fmt.Errorf("remove login flag: %w", err)
	}
	if err := s.kv.Remove(ctx, kv.KeyUserEmail); err != nil {
		s.logger.Warn("remove user email failed", zap.Error(err))
		err = fmt.Errorf("remove user email: %w", err)
	}

	s.set(State{})
	s.logger.Info("logged out")
	return err
}

// State returns the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after every session change.
// The returned func removes the registration.
func (s *Store) Subscribe(fn func(State)) func() {
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

func (s *Store) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notify(st)
}

func (s *Store) notify(st State) {
	s.mu.RLock()
	fns := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}

// IsValidationError reports whether err is a user input problem rather
// than a persistence or credential failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrInvalidEmail)
}
