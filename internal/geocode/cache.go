package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mgirardot/pna-zonage/internal/cache/redisstore"
	"github.com/mgirardot/pna-zonage/internal/observability"
)

// Cached decorates a Geocoder with an in-process LRU in front of Redis.
// Addresses are stable, so cached results stay valid for a long TTL; every
// cache failure degrades to a direct geocoder call.
type Cached struct {
	next   Geocoder
	logger *slog.Logger
	lru    *lru.Cache[string, Result]
	redis  *redisstore.Client
	ttl    time.Duration
}

var _ Geocoder = (*Cached)(nil)

// NewCached builds the cached variant. redis may be nil (LRU only).
func NewCached(next Geocoder, logger *slog.Logger, redis *redisstore.Client, lruSize int, ttl time.Duration) (*Cached, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if lruSize <= 0 {
		lruSize = 1024
	}
	l, err := lru.New[string, Result](lruSize)
	if err != nil {
		return nil, fmt.Errorf("build lru: %w", err)
	}
	return &Cached{next: next, logger: logger, lru: l, redis: redis, ttl: ttl}, nil
}

func (c *Cached) Geocode(ctx context.Context, address string) (Result, error) {
	key := Key(address)

	if res, ok := c.lru.Get(key); ok {
		observability.IncCacheHit()
		return res, nil
	}

	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key)
		switch {
		case err == nil:
			var res Result
			if jerr := json.Unmarshal(raw, &res); jerr == nil {
				observability.IncCacheHit()
				c.lru.Add(key, res)
				return res, nil
			}
			// Poisoned entry: drop it and fall through to the geocoder.
			_ = c.redis.Del(ctx, key)
			observability.IncCacheError()
		case errors.Is(err, redisstore.ErrMiss):
			observability.IncCacheMiss()
		default:
			observability.IncCacheError()
			c.logger.Warn("geocode cache read failed", "err", err)
		}
	} else {
		observability.IncCacheMiss()
	}

	res, err := c.next.Geocode(ctx, address)
	if err != nil {
		return Result{}, err
	}

	c.lru.Add(key, res)
	if c.redis != nil {
		if raw, jerr := json.Marshal(res); jerr == nil {
			if serr := c.redis.Set(ctx, key, raw, c.ttl); serr != nil {
				c.logger.Warn("geocode cache write failed", "err", serr)
			}
		}
	}
	return res, nil
}

// Key normalizes an address into a cache key. Case and surrounding space
// are irrelevant to the geocoder, so they are folded out before hashing.
func Key(address string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(address), " "))
	return fmt.Sprintf("geocode:%016x", xxhash.Sum64String(norm))
}
