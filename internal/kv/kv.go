// Package kv provides the string-keyed persistence shared by the session,
// favorites, theme and avatar stores.
//
// Absence of a key is a valid state, not an error: Get reports it through the
// found flag. Each store owns a disjoint set of keys, listed below.
package kv

import (
	"context"
	"errors"
)

// Keys used by the application stores.
const (
	KeyLoggedIn     = "isLoggedIn"
	KeyUserEmail    = "userEmail"
	KeyFavoriteIDs  = "favoriteProductIds"
	KeyProfileImage = "profileImage"
	KeyThemeMode    = "themeMode"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv store is closed")

// Store is durable string-keyed persistence without transactions.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
