package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type RedisThumbnailCacheSuite struct {
	suite.Suite
	cache *RedisThumbnailCache
	close func()
}

func (s *RedisThumbnailCacheSuite) SetupSuite() {
	var cfg config.Config
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	rdb, err := NewRedisClient(cfg, logger.NewNopLogger())
	s.Require().NoError(err)
	s.cache = NewRedisThumbnailCache(rdb)
	s.close = func() { rdb.Close() }
}

func (s *RedisThumbnailCacheSuite) TearDownSuite() {
	if s.close != nil {
		s.close()
	}
}

func (s *RedisThumbnailCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	id := "it-" + time.Now().Format("150405.000000")

	_, err := s.cache.Get(ctx, id)
	s.ErrorIs(err, service.ErrCacheMiss)

	s.Require().NoError(s.cache.Set(ctx, id, service.CachedThumbnail{ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x00}}, time.Minute))
	got, err := s.cache.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("image/jpeg", got.ContentType)
	s.Equal([]byte{0xff, 0xd8, 0x00}, got.Data)

	s.Require().NoError(s.cache.Delete(ctx, id))
	_, err = s.cache.Get(ctx, id)
	s.ErrorIs(err, service.ErrCacheMiss)
}

func (s *RedisThumbnailCacheSuite) TestExpiry() {
	ctx := context.Background()
	id := "exp-" + time.Now().Format("150405.000000")

	s.Require().NoError(s.cache.Set(ctx, id, service.CachedThumbnail{Data: []byte("x")}, time.Second))
	s.Eventually(func() bool {
		_, err := s.cache.Get(ctx, id)
		return err == service.ErrCacheMiss
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisThumbnailCacheSuite(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("Skipping Redis tests. Set REDIS_ADDR to run.")
	}
	suite.Run(t, new(RedisThumbnailCacheSuite))
}
