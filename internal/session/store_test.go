package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/finder/internal/kv"
)

// failingStore wraps a Memory store and fails writes to one key.
type failingStore struct {
	*kv.Memory
	failKey string
	failGet bool
}

var errBoom = errors.New("boom")

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errBoom
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errBoom
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if key == f.failKey {
		return errBoom
	}
	return f.Memory.Remove(ctx, key)
}

func TestStore_LoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewStore(mem, nil)
	s.Initialize(ctx)
	require.False(t, s.State().Authenticated)

	require.NoError(t, s.Login(ctx, "a@b.co"))
	assert.Equal(t, State{Authenticated: true, UserID: "a@b.co"}, s.State())

	flag, found, err := mem.Get(ctx, kv.KeyLoggedIn)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "true", flag)

	email, _, err := mem.Get(ctx, kv.KeyUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", email)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, State{}, s.State())
	assert.Equal(t, 0, mem.Len())
}

func TestStore_InitializeHydratesPersistedSession(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, NewStore(mem, nil).Login(ctx, "a@b.co"))

	restarted := NewStore(mem, nil)
	restarted.Initialize(ctx)
	assert.Equal(t, State{Authenticated: true, UserID: "a@b.co"}, restarted.State())
}

func TestStore_InitializeNormalizesFlagWithoutEmail(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, kv.KeyLoggedIn, "true"))

	s := NewStore(mem, nil)
	s.Initialize(ctx)
	assert.False(t, s.State().Authenticated)
	assert.Empty(t, s.State().UserID)
}

func TestStore_InitializeRunsOnce(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewStore(mem, nil)
	s.Initialize(ctx)

	require.NoError(t, mem.Set(ctx, kv.KeyLoggedIn, "true"))
	require.NoError(t, mem.Set(ctx, kv.KeyUserEmail, "late@b.co"))
	s.Initialize(ctx)
	assert.False(t, s.State().Authenticated)
}

func TestStore_InitializeUnavailableStoreIsLoggedOut(t *testing.T) {
	s := NewStore(&failingStore{Memory: kv.NewMemory(), failGet: true}, nil)
	s.Initialize(context.Background())
	assert.False(t, s.State().Authenticated)
}

func TestStore_LoginPersistenceErrorKeepsMemory(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Memory: kv.NewMemory(), failKey: kv.KeyUserEmail}
	s := NewStore(fs, nil)

	err := s.Login(ctx, "a@b.co")
	require.ErrorIs(t, err, errBoom)
	assert.False(t, s.State().Authenticated)

	_, found, err := fs.Memory.Get(ctx, kv.KeyLoggedIn)
	require.NoError(t, err)
	assert.False(t, found, "login flag should be rolled back")
}

func TestStore_LoginRejectsBlankIdentifier(t *testing.T) {
	s := NewStore(kv.NewMemory(), nil)
	err := s.Login(context.Background(), "   ")
	require.ErrorIs(t, err, ErrMissingInput)
	assert.True(t, IsValidationError(err))
}

func TestStore_LogoutFlagFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Memory: kv.NewMemory()}
	s := NewStore(fs, nil)
	require.NoError(t, s.Login(ctx, "a@b.co"))

	fs.failKey = kv.KeyLoggedIn
	require.ErrorIs(t, s.Logout(ctx), errBoom)
	assert.True(t, s.State().Authenticated)
}

func TestStore_SubscribeNotifiesAndUnsubscribes(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory(), nil)

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	require.NoError(t, s.Login(ctx, "a@b.co"))
	require.NoError(t, s.Logout(ctx))
	unsubscribe()
	require.NoError(t, s.Login(ctx, "c@d.co"))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Authenticated)
	assert.False(t, seen[1].Authenticated)
}

// slowStore blocks the first Get until release is closed.
type slowStore struct {
	*kv.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.Memory.Get(ctx, key)
}

func TestStore_LoginDuringHydrationWins(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{Memory: kv.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(store, nil)

	hydrated := make(chan struct{})
	go func() {
		s.Initialize(ctx)
		close(hydrated)
	}()
	<-store.entered

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- s.Login(ctx, "a@b.co") }()
	time.Sleep(20 * time.Millisecond)

	close(store.release)
	<-hydrated
	require.NoError(t, <-loggedIn)
	assert.Equal(t, State{Authenticated: true, UserID: "a@b.co"}, s.State())
}
