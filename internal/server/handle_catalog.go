package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exploremaroc/companion/internal/catalog"
)

func handleListLocations(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Locations())
	}
}

func handleGetLocation(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, ok := c.Location(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeJSON(w, http.StatusOK, loc)
	}
}

func handleListAttractions(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Attractions())
	}
}

func handleGetAttraction(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := c.Attraction(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "attraction not found")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func handleListHotels(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Hotels())
	}
}

func handleGetHotel(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := c.Hotel(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "hotel not found")
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func handleListRestaurants(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Restaurants())
	}
}

func handleGetRestaurant(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest, ok := c.Restaurant(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		writeJSON(w, http.StatusOK, rest)
	}
}

func handleListTransports(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Transports())
	}
}

func handleListCategories(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Categories())
	}
}
