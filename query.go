package elevation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("not a finite number")

// ParseLatLngs parses coordinates of the form lat1,lng1|lat2,lng2|... An
// empty string contains no coordinates.
func ParseLatLngs(s string) ([]LatLng, error) {
	if s == "" {
		return nil, nil
	}
	pairs := strings.Split(s, "|")
	latLngs := make([]LatLng, 0, len(pairs))
	for index, pair := range pairs {
		latStr, lngStr, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, &MalformedCoordinateError{
				Index: index,
				Text:  pair,
			}
		}
		lat, err := parseDegrees(latStr)
		if err != nil {
			return nil, &MalformedCoordinateError{
				Index: index,
				Text:  pair,
				Err:   err,
			}
		}
		lng, err := parseDegrees(lngStr)
		if err != nil {
			return nil, &MalformedCoordinateError{
				Index: index,
				Text:  pair,
				Err:   err,
			}
		}
		latLngs = append(latLngs, LatLng{Lat: lat, Lng: lng})
	}
	return latLngs, nil
}

func parseDegrees(s string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	switch {
	case err != nil:
		return 0, err
	case math.IsNaN(value) || math.IsInf(value, 0):
		return 0, errNotFinite
	default:
		return value, nil
	}
}
