package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &Session{Token: "tok", Username: "ana", ExpiresAt: exp}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "ana", s.Username)
	assert.True(t, s.ExpiresAt.Equal(exp))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := Current(ctx, NewMemoryStore(nil), now)
	assert.ErrorIs(t, err, ErrNoSession)

	expired := NewMemoryStore(&Session{Token: "t", ExpiresAt: now.Add(-time.Minute)})
	_, err = Current(ctx, expired, now)
	assert.ErrorIs(t, err, ErrNoSession)

	noExpiry := NewMemoryStore(&Session{Token: "t"})
	s, err := Current(ctx, noExpiry, now)
	require.NoError(t, err)
	assert.Equal(t, "t", s.Token)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(&Session{Token: "a"})

	s, err := store.Load(ctx)
	require.NoError(t, err)
	s.Token = "mutated"

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Token)
}

func TestContextStore(t *testing.T) {
	var cs ContextStore
	ctx := context.Background()

	_, err := cs.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Error(t, cs.Save(ctx, &Session{Token: "x"}))

	reqCtx := WithStore(ctx, NewMemoryStore(nil))
	require.NoError(t, cs.Save(reqCtx, &Session{Token: "x"}))

	s, err := cs.Load(reqCtx)
	require.NoError(t, err)
	assert.Equal(t, "x", s.Token)

	_, err = cs.Load(context.WithoutCancel(reqCtx))
	assert.NoError(t, err)

	require.NoError(t, cs.Clear(reqCtx))
	_, err = cs.Load(reqCtx)
	assert.ErrorIs(t, err, ErrNoSession)
}
