package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

func TestMemoryThumbnailCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryThumbnailCache()
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "1")
	assert.ErrorIs(t, err, service.ErrCacheMiss)

	data := []byte("png")
	require.NoError(t, c.Set(ctx, "1", service.CachedThumbnail{ContentType: "image/png", Data: data}, time.Minute))
	data[0] = 'X'

	got, err := c.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "png", string(got.Data))
	got.Data[0] = 'Y'

	again, err := c.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "png", string(again.Data))

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "1")
	assert.ErrorIs(t, err, service.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "2", service.CachedThumbnail{Data: []byte("x")}, 0))
	now = now.Add(24 * time.Hour)
	_, err = c.Get(ctx, "2")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "2"))
	_, err = c.Get(ctx, "2")
	assert.ErrorIs(t, err, service.ErrCacheMiss)
}

func TestNewThumbnailCache_FallsBackToMemory(t *testing.T) {
	var cfg config.Config
	c, closeFn := NewThumbnailCache(cfg, logger.NewNopLogger())
	defer closeFn()
	assert.IsType(t, &MemoryThumbnailCache{}, c)

	cfg.Redis.Addr = "127.0.0.1:1"
	c, closeFn = NewThumbnailCache(cfg, logger.NewNopLogger())
	defer closeFn()
	assert.IsType(t, &MemoryThumbnailCache{}, c)
}
