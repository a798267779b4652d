package elevation

import "math"

// LatLngToPixel returns the global pixel coordinate of latLng at zoom using
// the spherical Web Mercator projection. Pixel coordinates are rounded to the
// nearest integer. Longitudes wrap around the antimeridian, so X is in [0,
// TileSize*2^zoom) and longitude 180 maps to the same pixels as -180.
// Latitudes at or beyond the poles are not clamped and give extreme or NaN
// results.
func LatLngToPixel(latLng LatLng, zoom int) Pixel {
	lat := latLng.Lat / 360 * 2 * math.Pi
	lng := latLng.Lng / 360 * 2 * math.Pi
	yrad := math.Log(math.Tan(math.Pi/4 + lat/2))
	xrad := lng + math.Pi
	size := TileSize * math.Exp2(float64(zoom))
	x := math.Round(xrad / (2 * math.Pi) * size)
	return Pixel{
		X: x - size*math.Floor(x/size),
		Y: math.Round((math.Pi - yrad) / (2 * math.Pi) * size),
	}
}

// PixelToTile returns the key of the tile at zoom containing pixel and the
// pixel's offset within that tile. It returns false if pixel is not finite or
// too large to be indexed.
func PixelToTile(pixel Pixel, zoom int) (TileKey, Coord, bool) {
	if !indexable(pixel.X) || !indexable(pixel.Y) {
		return TileKey{}, Coord{}, false
	}
	tileKey := TileKey{
		Z: zoom,
		X: int(math.Floor(pixel.X / TileSize)),
		Y: int(math.Floor(pixel.Y / TileSize)),
	}
	offset := Coord{
		X: int(math.Floor(pixel.X - TileSize*math.Floor(pixel.X/TileSize))),
		Y: int(math.Floor(pixel.Y - TileSize*math.Floor(pixel.Y/TileSize))),
	}
	return tileKey, offset, true
}

// LatLngToTile returns the key of the tile at zoom containing latLng and the
// offset of latLng within that tile.
func LatLngToTile(latLng LatLng, zoom int) (TileKey, Coord, bool) {
	return PixelToTile(LatLngToPixel(latLng, zoom), zoom)
}

// maxPixel is the largest pixel coordinate magnitude that converts exactly to
// an int.
const maxPixel = 1 << 53

func indexable(x float64) bool {
	return !math.IsNaN(x) && math.Abs(x) <= maxPixel
}
