package elevation

import "context"

// An ElevationService returns elevations at geographic coordinates.
type ElevationService struct {
	tileSet *TileSet
}

func NewElevationService(tileSet *TileSet) *ElevationService {
	return &ElevationService{
		tileSet: tileSet,
	}
}

// TileSet returns s's tile set.
func (s *ElevationService) TileSet() *TileSet {
	return s.tileSet
}

// Elevations returns the elevations at latLngs, in the same order. Missing
// elevations are represented by NaNs.
func (s *ElevationService) Elevations(ctx context.Context, latLngs []LatLng) ([]float64, error) {
	zoom := s.tileSet.Zoom()
	pixels := make([]Pixel, len(latLngs))
	for i, latLng := range latLngs {
		pixels[i] = LatLngToPixel(latLng, zoom)
	}
	return s.tileSet.Samples(ctx, pixels)
}

// Elevation returns the elevation at latLng.
func (s *ElevationService) Elevation(ctx context.Context, latLng LatLng) (float64, error) {
	elevations, err := s.Elevations(ctx, []LatLng{latLng})
	if err != nil {
		return 0, err
	}
	return elevations[0], nil
}
