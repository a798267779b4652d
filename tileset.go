package elevation

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	tileFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_fetches_total",
		Help: "The total number of tile fetches",
	})
	tileFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_tile_fetch_errors_total",
		Help: "The total number of failed tile fetches",
	})
	missingTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_missing_tile_cache_hits_total",
		Help: "The total number of hits on the missing tile cache",
	})
	missingTileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_missing_tile_cache_misses_total",
		Help: "The total number of misses on the missing tile cache",
	})
	absentSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elevation_absent_samples_total",
		Help: "The total number of samples without data",
	})
)

// A TileSet is a set of elevation tiles at a single zoom level, fetched on
// demand and cached.
type TileSet struct {
	fetcher              TileFetcher
	cache                TileCache
	cacheSize            int
	cacheTTL             time.Duration
	zoom                 int
	concurrency          int
	missingTilesAsNoData bool
	missingTiles         sync.Map
}

// A TileSetOption sets an option on a TileSet.
type TileSetOption func(*TileSet)

// NewTileSet returns a new TileSet with the given options. A tile fetcher is
// required.
func NewTileSet(options ...TileSetOption) (*TileSet, error) {
	s := &TileSet{
		cacheSize:   256,
		zoom:        DefaultZoom,
		concurrency: 1,
	}
	for _, option := range options {
		option(s)
	}

	if s.fetcher == nil {
		return nil, errors.New("no tile fetcher")
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.cache == nil {
		var err error
		s.cache, err = NewOtterTileCache(s.cacheSize, s.cacheTTL)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithCacheSize sets the maximum number of tiles held by the default cache.
func WithCacheSize(cacheSize int) TileSetOption {
	return func(s *TileSet) {
		s.cacheSize = cacheSize
	}
}

// WithCacheTTL sets the time after which tiles in the default cache expire.
func WithCacheTTL(cacheTTL time.Duration) TileSetOption {
	return func(s *TileSet) {
		s.cacheTTL = cacheTTL
	}
}

// WithConcurrency sets the maximum number of tiles resolved in parallel for a
// single call to Samples.
func WithConcurrency(concurrency int) TileSetOption {
	return func(s *TileSet) {
		s.concurrency = concurrency
	}
}

// WithMissingTilesAsNoData sets whether samples in tiles that do not exist
// are reported as NaN instead of as an error.
func WithMissingTilesAsNoData(missingTilesAsNoData bool) TileSetOption {
	return func(s *TileSet) {
		s.missingTilesAsNoData = missingTilesAsNoData
	}
}

func WithTileCache(cache TileCache) TileSetOption {
	return func(s *TileSet) {
		s.cache = cache
	}
}

func WithTileFetcher(fetcher TileFetcher) TileSetOption {
	return func(s *TileSet) {
		s.fetcher = fetcher
	}
}

func WithZoom(zoom int) TileSetOption {
	return func(s *TileSet) {
		s.zoom = zoom
	}
}

// Zoom returns s's zoom level.
func (s *TileSet) Zoom() int {
	return s.zoom
}

// Samples returns the samples at pixels. Missing samples are represented by
// NaNs. If any tile cannot be retrieved then Samples returns a
// *TileFetchError and no samples.
func (s *TileSet) Samples(ctx context.Context, pixels []Pixel) ([]float64, error) {
	samples := make([]float64, len(pixels))

	// Group indexes by tile key, keeping tiles in order of first use.
	type groupStruct struct {
		tileKey TileKey
		offsets []Coord
		indexes []int
	}
	var groups []*groupStruct
	groupsByTileKey := make(map[TileKey]*groupStruct)
	for index, pixel := range pixels {
		tileKey, offset, ok := PixelToTile(pixel, s.zoom)
		if !ok || !tileKey.Valid() {
			samples[index] = math.NaN()
			absentSamples.Inc()
			continue
		}
		group, ok := groupsByTileKey[tileKey]
		if !ok {
			group = &groupStruct{
				tileKey: tileKey,
			}
			groupsByTileKey[tileKey] = group
			groups = append(groups, group)
		}
		group.offsets = append(group.offsets, offset)
		group.indexes = append(group.indexes, index)
	}

	// Populate samples one tile at a time. Each group writes only to its own
	// indexes.
	populate := func(ctx context.Context, group *groupStruct) error {
		tileGrid, err := s.getTileCached(ctx, group.tileKey)
		if err != nil {
			return err
		}
		for i, index := range group.indexes {
			if tileGrid == nil {
				samples[index] = math.NaN()
			} else {
				samples[index] = tileGrid.Sample(group.offsets[i])
			}
			if math.IsNaN(samples[index]) {
				absentSamples.Inc()
			}
		}
		return nil
	}

	if s.concurrency == 1 || len(groups) <= 1 {
		for _, group := range groups {
			if err := populate(ctx, group); err != nil {
				return nil, err
			}
		}
		return samples, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, group := range groups {
		g.Go(func() error {
			return populate(ctx, group)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

// Tile returns the tile at tileKey, using the cache if possible. If the tile
// does not exist and s treats missing tiles as no data then it returns nil.
func (s *TileSet) Tile(ctx context.Context, tileKey TileKey) (*TileGrid, error) {
	return s.getTileCached(ctx, tileKey)
}

// getTile fetches and parses the tile at tileKey.
func (s *TileSet) getTile(ctx context.Context, tileKey TileKey) (*TileGrid, error) {
	tileFetches.Inc()
	data, err := s.fetcher.FetchTile(ctx, tileKey)
	if err != nil {
		tileFetchErrors.Inc()
		return nil, &TileFetchError{
			TileKey: tileKey,
			Err:     err,
		}
	}
	tileGrid, err := ParseTileGrid(bytes.NewReader(data))
	if err != nil {
		tileFetchErrors.Inc()
		return nil, &TileFetchError{
			TileKey: tileKey,
			Err:     err,
		}
	}
	return tileGrid, nil
}

// getTileCached returns the tile at tileKey, using the cache if possible.
func (s *TileSet) getTileCached(ctx context.Context, tileKey TileKey) (*TileGrid, error) {
	if s.missingTilesAsNoData {
		if _, ok := s.missingTiles.Load(tileKey); ok {
			missingTileCacheHits.Inc()
			return nil, nil
		}
	}

	switch tileGrid, err := s.cache.Get(ctx, tileKey, s.getTile); {
	case s.missingTilesAsNoData && errors.Is(err, fs.ErrNotExist):
		s.missingTiles.Store(tileKey, struct{}{})
		missingTileCacheMisses.Inc()
		return nil, nil
	case err != nil:
		return nil, err
	default:
		return tileGrid, nil
	}
}
