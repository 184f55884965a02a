// Package profile stores the user's avatar image reference and defines the
// boundary to whatever supplies new images.
package profile

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

// AvatarStore holds the avatar URI persisted under kv.KeyProfileImage.
type AvatarStore struct {
	kv     kv.Store
	logger *zap.Logger

	mu          sync.RWMutex
	uri         string
	initialized bool
}

// NewAvatarStore returns a store with no avatar.
func NewAvatarStore(store kv.Store, logger *zap.Logger) *AvatarStore {
	return &AvatarStore{kv: store, logger: logging.OrNop(logger).Named("profile")}
}

// Initialize reads the persisted URI once. Read errors leave the avatar unset.
func (a *AvatarStore) Initialize(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return
	}
	a.initialized = true

	uri, found, err := a.kv.Get(ctx, kv.KeyProfileImage)
	if err != nil {
		a.logger.Warn("read avatar failed", zap.Error(err))
		return
	}
	if found {
		a.uri = strings.TrimSpace(uri)
	}
}

// URI returns the avatar and whether one is set. Callers show a placeholder
// when it is not.
func (a *AvatarStore) URI() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.uri, a.uri != ""
}

// Set persists uri and then makes it current.
func (a *AvatarStore) Set(ctx context.Context, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return errors.New("avatar uri is empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.kv.Set(ctx, kv.KeyProfileImage, uri); err != nil {
		return fmt.Errorf("persist avatar: %w", err)
	}
	a.uri = uri
	return nil
}

// Clear removes the avatar.
func (a *AvatarStore) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.kv.Remove(ctx, kv.KeyProfileImage); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}
	a.uri = ""
	return nil
}

// Capture asks picker for an image and stores it. A cancelled pick returns
// nil and leaves the avatar unchanged; ErrPermissionDenied is returned as is
// so the caller can alert.
func Capture(ctx context.Context, picker Picker, store *AvatarStore) error {
	uri, err := picker.Pick(ctx)
	if errors.Is(err, ErrPickCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return store.Set(ctx, uri)
}
