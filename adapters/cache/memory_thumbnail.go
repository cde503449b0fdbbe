package cache

import (
	"context"
	"sync"
	"time"

	"github.com/khoahotran/jutjub/internal/application/service"
)

type memoryEntry struct {
	thumb   service.CachedThumbnail
	expires time.Time
}

// MemoryThumbnailCache is the in-process fallback used when Redis is not
// configured.
type MemoryThumbnailCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ service.ThumbnailCache = (*MemoryThumbnailCache)(nil)

func NewMemoryThumbnailCache() *MemoryThumbnailCache {
	return &MemoryThumbnailCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryThumbnailCache) Get(_ context.Context, videoID string) (*service.CachedThumbnail, error) {
	c.mu.RLock()
	e, ok := c.entries[videoID]
	c.mu.RUnlock()
	if !ok {
		return nil, service.ErrCacheMiss
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, videoID)
		c.mu.Unlock()
		return nil, service.ErrCacheMiss
	}
	thumb := e.thumb
	thumb.Data = append([]byte(nil), e.thumb.Data...)
	return &thumb, nil
}

func (c *MemoryThumbnailCache) Set(_ context.Context, videoID string, thumb service.CachedThumbnail, ttl time.Duration) error {
	e := memoryEntry{thumb: service.CachedThumbnail{
		ContentType: thumb.ContentType,
		Data:        append([]byte(nil), thumb.Data...),
	}}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[videoID] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryThumbnailCache) Delete(_ context.Context, videoID string) error {
	c.mu.Lock()
	delete(c.entries, videoID)
	c.mu.Unlock()
	return nil
}
