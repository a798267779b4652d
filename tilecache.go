package elevation

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maypok86/otter/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_cache_hits_total",
		Help: "The total number of hits on the tile cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_cache_misses_total",
		Help: "The total number of misses on the tile cache",
	})
	tileCacheSharedLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_cache_shared_loads_total",
		Help: "The total number of misses on the tile cache served by another caller's load",
	})
	tileCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_cache_evictions_total",
		Help: "The total number of evictions from the tile cache",
	})
)

// A TileLoader loads the tile at a tile key.
type TileLoader func(ctx context.Context, tileKey TileKey) (*TileGrid, error)

// A TileCache caches tiles. Concurrent misses on the same tile key call
// loader once and share its result. Errors returned by loader are not cached.
//
// The shared load is not cancelled when the context of the caller that
// started it is done. Each caller stops waiting when its own context is done.
type TileCache interface {
	Get(ctx context.Context, tileKey TileKey, loader TileLoader) (*TileGrid, error)
}

type tileCacheResult struct {
	tileGrid *TileGrid
	err      error
}

// An OtterTileCache is a TileCache bounded by size and, optionally, by age.
type OtterTileCache struct {
	cache *otter.Cache[TileKey, *TileGrid]
}

// NewOtterTileCache returns a new OtterTileCache holding at most maximumSize
// tiles. If ttl is positive then tiles expire ttl after they were loaded.
func NewOtterTileCache(maximumSize int, ttl time.Duration) (*OtterTileCache, error) {
	options := &otter.Options[TileKey, *TileGrid]{
		MaximumSize: maximumSize,
		OnDeletion: func(e otter.DeletionEvent[TileKey, *TileGrid]) {
			if e.WasEvicted() {
				tileCacheEvictions.Inc()
			}
		},
	}
	if ttl > 0 {
		options.ExpiryCalculator = otter.ExpiryWriting[TileKey, *TileGrid](ttl)
	}
	cache, err := otter.New(options)
	if err != nil {
		return nil, err
	}
	return &OtterTileCache{
		cache: cache,
	}, nil
}

func (c *OtterTileCache) Get(ctx context.Context, tileKey TileKey, loader TileLoader) (*TileGrid, error) {
	if tileGrid, ok := c.cache.GetIfPresent(tileKey); ok {
		tileCacheHits.Inc()
		return tileGrid, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	resultCh := make(chan tileCacheResult, 1)
	go func() {
		loaded := false
		tileGrid, err := c.cache.Get(loadCtx, tileKey, otter.LoaderFunc[TileKey, *TileGrid](func(ctx context.Context, tileKey TileKey) (*TileGrid, error) {
			loaded = true
			tileCacheMisses.Inc()
			return loader(ctx, tileKey)
		}))
		if !loaded {
			tileCacheSharedLoads.Inc()
		}
		resultCh <- tileCacheResult{
			tileGrid: tileGrid,
			err:      err,
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultCh:
		if result.err != nil {
			return nil, result.err
		}
		return result.tileGrid, nil
	}
}

// Len returns the approximate number of tiles in c.
func (c *OtterTileCache) Len() int {
	return c.cache.EstimatedSize()
}

// An LRUTileCache is a TileCache that evicts the least recently used tile.
type LRUTileCache struct {
	cache    *lru.Cache[TileKey, *TileGrid]
	inflight singleflight.Group
}

// NewLRUTileCache returns a new LRUTileCache holding at most size tiles.
func NewLRUTileCache(size int) (*LRUTileCache, error) {
	cache, err := lru.New[TileKey, *TileGrid](size)
	if err != nil {
		return nil, err
	}
	return &LRUTileCache{
		cache: cache,
	}, nil
}

func (c *LRUTileCache) Get(ctx context.Context, tileKey TileKey, loader TileLoader) (*TileGrid, error) {
	if tileGrid, ok := c.cache.Get(tileKey); ok {
		tileCacheHits.Inc()
		return tileGrid, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	called := false
	resultCh := c.inflight.DoChan(tileKey.String(), func() (any, error) {
		called = true
		if tileGrid, ok := c.cache.Get(tileKey); ok {
			tileCacheHits.Inc()
			return tileGrid, nil
		}

		tileCacheMisses.Inc()

		tileGrid, err := loader(loadCtx, tileKey)
		if err != nil {
			return nil, err
		}

		if eviction := c.cache.Add(tileKey, tileGrid); eviction {
			tileCacheEvictions.Inc()
		}

		return tileGrid, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultCh:
		if result.Err != nil {
			return nil, result.Err
		}
		if !called {
			tileCacheSharedLoads.Inc()
		}
		return result.Val.(*TileGrid), nil
	}
}

// Len returns the number of tiles in c.
func (c *LRUTileCache) Len() int {
	return c.cache.Len()
}
