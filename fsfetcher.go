package elevation

import (
	"context"
	"io/fs"
)

// An FSTileFetcher reads tiles from a filesystem laid out as {z}/{x}/{y}.txt.
type FSTileFetcher struct {
	fsys      fs.FS
	extension string
}

// NewFSTileFetcher returns a new FSTileFetcher. If extension is empty then
// .txt is used.
func NewFSTileFetcher(fsys fs.FS, extension string) *FSTileFetcher {
	if extension == "" {
		extension = ".txt"
	}
	return &FSTileFetcher{
		fsys:      fsys,
		extension: extension,
	}
}

func (f *FSTileFetcher) FetchTile(ctx context.Context, tileKey TileKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.fsys, tileKey.String()+f.extension)
}
