package elevation

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
)

// A TileFetcher fetches the raw data of a tile. Implementations return an
// error matching fs.ErrNotExist if the tile does not exist.
type TileFetcher interface {
	FetchTile(ctx context.Context, tileKey TileKey) ([]byte, error)
}

// A TileFetcherFunc is a func that implements TileFetcher.
type TileFetcherFunc func(ctx context.Context, tileKey TileKey) ([]byte, error)

func (f TileFetcherFunc) FetchTile(ctx context.Context, tileKey TileKey) ([]byte, error) {
	return f(ctx, tileKey)
}

// An HTTPStatusError is returned when a tile server responds with a non-2xx
// status code.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is returns true if target is fs.ErrNotExist and the status code is 404 Not
// Found.
func (e *HTTPStatusError) Is(target error) bool {
	return target == fs.ErrNotExist && e.StatusCode == http.StatusNotFound
}
