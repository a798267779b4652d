package elevation

import "slices"

// GSIDEMBaseURL is the base URL of the Geospatial Information Authority of
// Japan's DEM tiles.
const GSIDEMBaseURL = "https://cyberjapandata.gsi.go.jp/xyz/dem"

// NewGSIDEM returns a TileSet of the GSI DEM tiles at zoom level 10.
func NewGSIDEM(options ...TileSetOption) (*TileSet, error) {
	return NewTileSet(slices.Concat(
		[]TileSetOption{
			WithTileFetcher(NewHTTPTileFetcher(GSIDEMBaseURL)),
			WithZoom(DefaultZoom),
		},
		options,
	)...)
}
