package elevation

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout is the timeout of the default HTTP client.
const DefaultHTTPTimeout = 30 * time.Second

var defaultHTTPClient = &http.Client{
	Timeout: DefaultHTTPTimeout,
}

// An HTTPTileFetcher fetches tiles from an XYZ tile server.
type HTTPTileFetcher struct {
	baseURL   string
	extension string
	client    *http.Client
}

// An HTTPTileFetcherOption sets an option on an HTTPTileFetcher.
type HTTPTileFetcherOption func(*HTTPTileFetcher)

// NewHTTPTileFetcher returns a new HTTPTileFetcher that fetches tiles from
// {baseURL}/{z}/{x}/{y}.txt.
func NewHTTPTileFetcher(baseURL string, options ...HTTPTileFetcherOption) *HTTPTileFetcher {
	f := &HTTPTileFetcher{
		baseURL:   baseURL,
		extension: ".txt",
		client:    defaultHTTPClient,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// WithHTTPClient sets the client used to fetch tiles.
func WithHTTPClient(client *http.Client) HTTPTileFetcherOption {
	return func(f *HTTPTileFetcher) {
		f.client = client
	}
}

// WithExtension sets the filename extension of tiles, including the leading
// dot.
func WithExtension(extension string) HTTPTileFetcherOption {
	return func(f *HTTPTileFetcher) {
		f.extension = extension
	}
}

// URL returns the URL of the tile at tileKey.
func (f *HTTPTileFetcher) URL(tileKey TileKey) (string, error) {
	return url.JoinPath(f.baseURL, tileKey.String()+f.extension)
}

func (f *HTTPTileFetcher) FetchTile(ctx context.Context, tileKey TileKey) ([]byte, error) {
	u, err := f.URL(tileKey)
	if err != nil {
		return nil, fmt.Errorf("error joining url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", u, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{
			URL:        u,
			StatusCode: resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response for %s: %w", u, err)
	}

	log.Printf("Retrieved %s", u)

	return data, nil
}
