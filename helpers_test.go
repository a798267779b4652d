package elevation_test

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	elevation "github.com/twpayne/go-xyzelevation"
)

// testTileCSV returns a TileSize x TileSize CSV tile whose cells are given by
// cellFunc.
func testTileCSV(cellFunc func(x, y int) string) string {
	var sb strings.Builder
	for y := range elevation.TileSize {
		for x := range elevation.TileSize {
			if x != 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(cellFunc(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// offsetCell encodes a cell's offset as its elevation, with cells where x ==
// y marked as having no data.
func offsetCell(x, y int) string {
	if x == y {
		return "e"
	}
	return fmt.Sprintf("%d.%d", y, x)
}

// A testTileFetcher serves tiles from memory and counts fetches.
type testTileFetcher struct {
	mutex   sync.Mutex
	tiles   map[string]string
	errs    map[string]error
	fetches map[string]int
}

func newTestTileFetcher(tiles map[string]string) *testTileFetcher {
	return &testTileFetcher{
		tiles:   tiles,
		errs:    make(map[string]error),
		fetches: make(map[string]int),
	}
}

func (f *testTileFetcher) FetchTile(ctx context.Context, tileKey elevation.TileKey) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	key := tileKey.String()
	f.fetches[key]++
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	tile, ok := f.tiles[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
	}
	return []byte(tile), nil
}

func (f *testTileFetcher) Fetches(key string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.fetches[key]
}

func (f *testTileFetcher) TotalFetches() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	total := 0
	for _, n := range f.fetches {
		total += n
	}
	return total
}
