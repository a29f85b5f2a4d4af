package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// newTestBackend attaches a backend in a temp dir and detaches it on cleanup.
func newTestBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b := NewBackend(opts...)
	require.NoError(t, b.Attach(types.Config{
		Backend:           types.BackendSQLite,
		DataDir:           t.TempDir(),
		FacilityCacheSize: types.DefaultFacilityCacheSize,
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func seedFacility(t *testing.T, b *Backend, placeID string, lat, lon float64) *types.Facility {
	t.Helper()
	f, _, err := b.UpsertFacility(context.Background(), &types.Facility{
		PlaceID:   placeID,
		Latitude:  lat,
		Longitude: lon,
	})
	require.NoError(t, err)
	return f
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "database file should exist")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "dolt", DataDir: t.TempDir()}, types.ErrBackendUnknown},
		{"negative cache", types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir(), FacilityCacheSize: -1}, types.ErrCacheSizeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackend().Attach(tt.config)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should be a no-op")

	ctx := context.Background()
	_, err := b.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Counts(ctx)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, _, err = b.UpsertFacility(ctx, &types.Facility{PlaceID: "p"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_ReattachKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	require.NoError(t, b.CreateUser(ctx, &types.User{Username: "alice", PasswordHash: "h"}))
	seedFacility(t, b, "place-1", 1, 2)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	u, err := b2.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	f, err := b2.GetFacility(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Latitude)
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	b := newTestBackend(t, WithClock(steppingClock(start)))

	u := &types.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, b.CreateUser(ctx, u))
	assert.Equal(t, start, u.CreatedAt)

	got, err := b.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, start.Equal(got.CreatedAt))

	_, err = b.GetUser(ctx, "Alice")
	assert.ErrorIs(t, err, types.ErrUnknownUsername, "usernames are case-sensitive")
}

func TestUsers_Duplicate(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	require.NoError(t, b.CreateUser(ctx, &types.User{Username: "alice", PasswordHash: "x"}))
	err := b.CreateUser(ctx, &types.User{Username: "alice", PasswordHash: "y"})
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)

	got, err := b.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "x", got.PasswordHash, "original record must be unchanged")

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[types.UsersTable])
}

func TestUsers_InvalidInput(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	assert.ErrorIs(t, b.CreateUser(ctx, nil), types.ErrInvalidData)
	assert.ErrorIs(t, b.CreateUser(ctx, &types.User{}), types.ErrInvalidUsername)
}

func TestUsers_ConcurrentSignupsOneWins(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.CreateUser(ctx, &types.User{Username: "race", PasswordHash: "h"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, types.ErrDuplicateUsername)
	}
	assert.Equal(t, 1, ok)
}

func TestBackend_Counts(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	for _, name := range types.StandardTableNames {
		assert.Equal(t, 0, counts[name], name)
	}

	f := seedFacility(t, b, "p", 0, 0)
	require.NoError(t, b.AddComment(ctx, &types.Comment{FacilityID: f.FacilityID, Username: "u", Content: "c"}))

	counts, err = b.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[types.FacilitiesTable])
	assert.Equal(t, 1, counts[types.CommentsTable])
}

func TestParseTime_AcceptsRFC3339(t *testing.T) {
	ts, err := parseTime("2025-01-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T10:30:00.000000000Z", formatTime(ts))

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
