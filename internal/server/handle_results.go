package server

import (
	"net/http"
	"strconv"

	"github.com/exploremaroc/companion/internal/catalog"
)

// ResultsResponse is the data behind the results view. An unknown id is a
// soft miss: the camera flow must be able to recover, so it is reported in
// the body rather than as an error status.
type ResultsResponse struct {
	NotFound          bool                 `json:"notFound,omitempty"`
	Message           string               `json:"message,omitempty"`
	Location          *catalog.Location    `json:"location,omitempty"`
	Attraction        *catalog.Attraction  `json:"attraction,omitempty"`
	Confidence        int                  `json:"confidence"`
	NearbyHotels      []catalog.Hotel      `json:"nearbyHotels"`
	NearbyRestaurants []catalog.Restaurant `json:"nearbyRestaurants"`
}

func handleResults(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("locationId")

		// Confidence comes back from the navigation params; it is echoed,
		// clamped into a displayable range, never recomputed.
		confidence, _ := strconv.Atoi(r.URL.Query().Get("confidence"))
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 100 {
			confidence = 100
		}

		resp := ResultsResponse{
			Confidence:        confidence,
			NearbyHotels:      nearby(c.Hotels(), 2),
			NearbyRestaurants: nearby(c.Restaurants(), 2),
		}

		if loc, ok := c.Location(id); ok {
			resp.Location = &loc
		} else if a, ok := c.Attraction(id); ok {
			resp.Attraction = &a
		} else {
			writeJSON(w, http.StatusOK, ResultsResponse{
				NotFound:          true,
				Message:           "We couldn't identify this landmark. Try scanning again.",
				NearbyHotels:      []catalog.Hotel{},
				NearbyRestaurants: []catalog.Restaurant{},
			})
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func nearby[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
