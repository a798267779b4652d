package elevation

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

const (
	// TileSize is the width and height of a tile in pixels.
	TileSize = 256

	// DefaultZoom is the default zoom level at which elevations are sampled.
	DefaultZoom = 10
)

// A LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// A Pixel is a coordinate in the global pixel space of a tile pyramid at a
// given zoom level.
type Pixel struct {
	X float64
	Y float64
}

// A Coord is a pixel coordinate within a tile.
type Coord struct {
	X int
	Y int
}

// A TileKey identifies a tile.
type TileKey struct {
	Z int // Zoom.
	X int // Column.
	Y int // Row.
}

// String returns k as a path, e.g. 10/906/404.
func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Z, k.X, k.Y)
}

// Valid returns if k lies within the tile pyramid.
func (k TileKey) Valid() bool {
	if k.Z < 0 || k.Z > 30 {
		return false
	}
	limit := 1 << k.Z
	return 0 <= k.X && k.X < limit && 0 <= k.Y && k.Y < limit
}

// Elevations are elevation samples that marshal to JSON with absent (NaN)
// samples as null.
type Elevations []float64

func (e Elevations) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, sample := range e {
		if i != 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(sample) || math.IsInf(sample, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(strconv.FormatFloat(sample, 'f', -1, 64))
		}
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}
