package elevation

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
)

type elevationsResponse struct {
	Elevations Elevations `json:"elevations"`
}

// ElevationsHandler returns a handler that responds to requests with a
// locations query parameter of the form lat1,lng1|lat2,lng2|... with a JSON
// object containing the elevations.
func (s *ElevationService) ElevationsHandler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		latLngs, err := ParseLatLngs(request.URL.Query().Get("locations"))
		if err != nil {
			http.Error(writer, err.Error(), http.StatusBadRequest)
			return
		}

		elevations, err := s.Elevations(ctx, latLngs)
		var tileFetchError *TileFetchError
		switch {
		case errors.As(err, &tileFetchError):
			log.Printf("Couldn't fetch tile: %+v", err)
			http.Error(writer, "Error fetching tile", http.StatusBadGateway)
			return
		case err != nil:
			log.Printf("Couldn't get elevations: %+v", err)
			http.Error(writer, "Error getting elevations", http.StatusInternalServerError)
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(elevationsResponse{
			Elevations: Elevations(elevations),
		}); err != nil {
			log.Printf("Couldn't write response: %+v", err)
		}
	}
}

// HealthCheckHandler returns a handler that responds with 200 OK if the
// elevation at latLng can be retrieved and has data.
func (s *ElevationService) HealthCheckHandler(latLng LatLng) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		elevation, err := s.Elevation(request.Context(), latLng)
		switch {
		case err != nil:
			log.Printf("Couldn't get healthcheck elevation: %+v", err)
			writer.WriteHeader(http.StatusInternalServerError)
		case math.IsNaN(elevation):
			log.Printf("No healthcheck elevation at %+v", latLng)
			writer.WriteHeader(http.StatusInternalServerError)
		default:
			writer.WriteHeader(http.StatusOK)
		}
	}
}
