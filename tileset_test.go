package elevation_test

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	elevation "github.com/twpayne/go-xyzelevation"
)

func TestNewTileSet_NoFetcher(t *testing.T) {
	_, err := elevation.NewTileSet()
	assert.Error(t, err)
}

func TestTileSet_Samples(t *testing.T) {
	fetcher := newTestTileFetcher(map[string]string{
		"10/0/0": testTileCSV(offsetCell),
		"10/1/0": testTileCSV(func(x, y int) string { return "-1" }),
	})
	tileSet, err := elevation.NewTileSet(elevation.WithTileFetcher(fetcher))
	assert.NoError(t, err)
	assert.Equal(t, elevation.DefaultZoom, tileSet.Zoom())

	pixels := []elevation.Pixel{
		{X: 1, Y: 2},
		{X: 256 + 3, Y: 4},
		{X: 3, Y: 3},
		{X: 5, Y: 6},
		{X: math.NaN(), Y: 0},
		{X: -1, Y: 0},
		{X: 256 + 100, Y: 200},
		{X: 1, Y: 2},
	}
	actual, err := tileSet.Samples(t.Context(), pixels)
	assert.NoError(t, err)
	assert.Equal(t, len(pixels), len(actual))
	assertSamples(t, []float64{
		2.1,
		-1,
		math.NaN(),
		6.5,
		math.NaN(),
		math.NaN(),
		-1,
		2.1,
	}, actual)
	assert.Equal(t, 1, fetcher.Fetches("10/0/0"))
	assert.Equal(t, 1, fetcher.Fetches("10/1/0"))

	// A second batch is served from the cache.
	actual, err = tileSet.Samples(t.Context(), pixels[:2])
	assert.NoError(t, err)
	assertSamples(t, []float64{2.1, -1}, actual)
	assert.Equal(t, 2, fetcher.TotalFetches())
}

func TestTileSet_Samples_Concurrency(t *testing.T) {
	tiles := make(map[string]string)
	for x := range 8 {
		tiles[elevation.TileKey{Z: 10, X: x, Y: 0}.String()] = testTileCSV(func(int, int) string {
			return string(rune('0' + x))
		})
	}
	fetcher := newTestTileFetcher(tiles)
	tileSet, err := elevation.NewTileSet(
		elevation.WithTileFetcher(fetcher),
		elevation.WithConcurrency(4),
	)
	assert.NoError(t, err)

	var pixels []elevation.Pixel
	var expected []float64
	for i := range 64 {
		x := (i * 5) % 8
		pixels = append(pixels, elevation.Pixel{X: float64(256*x + i), Y: float64(i)})
		expected = append(expected, float64(x))
	}
	actual, err := tileSet.Samples(t.Context(), pixels)
	assert.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, 8, fetcher.TotalFetches())
}

func TestTileSet_Samples_FetchError(t *testing.T) {
	errUnavailable := errors.New("unavailable")
	for _, concurrency := range []int{1, 4} {
		fetcher := newTestTileFetcher(map[string]string{
			"10/0/0": testTileCSV(offsetCell),
			"10/2/0": testTileCSV(offsetCell),
		})
		fetcher.errs["10/1/0"] = errUnavailable
		tileSet, err := elevation.NewTileSet(
			elevation.WithTileFetcher(fetcher),
			elevation.WithConcurrency(concurrency),
		)
		assert.NoError(t, err)

		actual, err := tileSet.Samples(t.Context(), []elevation.Pixel{
			{X: 1, Y: 2},
			{X: 256 + 1, Y: 2},
			{X: 512 + 1, Y: 2},
		})
		assert.Zero(t, actual)
		var tileFetchError *elevation.TileFetchError
		assert.True(t, errors.As(err, &tileFetchError))
		assert.Equal(t, elevation.TileKey{Z: 10, X: 1, Y: 0}, tileFetchError.TileKey)
		assert.IsError(t, err, errUnavailable)

		// Errors are not cached.
		_, err = tileSet.Samples(t.Context(), []elevation.Pixel{{X: 256 + 1, Y: 2}})
		assert.Error(t, err)
		assert.Equal(t, 2, fetcher.Fetches("10/1/0"))
	}
}

func TestTileSet_Samples_MalformedTile(t *testing.T) {
	fetcher := elevation.TileFetcherFunc(func(ctx context.Context, tileKey elevation.TileKey) ([]byte, error) {
		return []byte("1,\"2\n"), nil
	})
	tileSet, err := elevation.NewTileSet(elevation.WithTileFetcher(fetcher))
	assert.NoError(t, err)

	_, err = tileSet.Samples(t.Context(), []elevation.Pixel{{X: 1, Y: 2}})
	var tileFetchError *elevation.TileFetchError
	assert.True(t, errors.As(err, &tileFetchError))
	assert.Equal(t, elevation.TileKey{Z: 10, X: 0, Y: 0}, tileFetchError.TileKey)
}

func TestTileSet_Samples_MissingTiles(t *testing.T) {
	fetcher := newTestTileFetcher(map[string]string{
		"10/0/0": testTileCSV(offsetCell),
	})

	strict, err := elevation.NewTileSet(elevation.WithTileFetcher(fetcher))
	assert.NoError(t, err)
	_, err = strict.Samples(t.Context(), []elevation.Pixel{{X: 256 + 1, Y: 2}})
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	lenient, err := elevation.NewTileSet(
		elevation.WithTileFetcher(fetcher),
		elevation.WithMissingTilesAsNoData(true),
	)
	assert.NoError(t, err)
	for range 2 {
		actual, err := lenient.Samples(t.Context(), []elevation.Pixel{
			{X: 256 + 1, Y: 2},
			{X: 1, Y: 2},
		})
		assert.NoError(t, err)
		assertSamples(t, []float64{math.NaN(), 2.1}, actual)
	}
	assert.Equal(t, 2, fetcher.Fetches("10/1/0"))

	tileGrid, err := lenient.Tile(t.Context(), elevation.TileKey{Z: 10, X: 1, Y: 0})
	assert.NoError(t, err)
	assert.Zero(t, tileGrid)
}

func TestTileSet_Tile(t *testing.T) {
	fetcher := newTestTileFetcher(map[string]string{
		"12/3626/1617": testTileCSV(offsetCell),
	})
	lruTileCache, err := elevation.NewLRUTileCache(4)
	assert.NoError(t, err)
	tileSet, err := elevation.NewTileSet(
		elevation.WithTileFetcher(fetcher),
		elevation.WithTileCache(lruTileCache),
		elevation.WithZoom(12),
	)
	assert.NoError(t, err)
	assert.Equal(t, 12, tileSet.Zoom())

	for range 2 {
		tileGrid, err := tileSet.Tile(t.Context(), elevation.TileKey{Z: 12, X: 3626, Y: 1617})
		assert.NoError(t, err)
		assert.Equal(t, 97.115, tileGrid.Sample(elevation.Coord{X: 115, Y: 97}))
	}
	assert.Equal(t, 1, fetcher.TotalFetches())
	assert.Equal(t, 1, lruTileCache.Len())
}

func assertSamples(t *testing.T, expected, actual []float64) {
	t.Helper()
	assert.Equal(t, len(expected), len(actual))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(actual[i]), "sample %d: expected NaN, got %v", i, actual[i])
		} else {
			assert.Equal(t, expected[i], actual[i], "sample %d", i)
		}
	}
}
