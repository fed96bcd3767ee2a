package server

import (
	"net/http"
	"testing"
)

func TestResultsUnknownLocation(t *testing.T) {
	r := testRouter(t)
	cookie := login(t, r)

	// An unrecognized id is a soft miss, never an error status.
	rec := doJSON(t, r, http.MethodGet, "/api/results?locationId=atlantis&confidence=90", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode[ResultsResponse](t, rec)
	if !resp.NotFound {
		t.Error("notFound = false for unknown id")
	}
	if resp.Message == "" {
		t.Error("no recovery hint in the body")
	}
}

func TestResultsClampsConfidence(t *testing.T) {
	r := testRouter(t)
	cookie := login(t, r)

	tests := []struct {
		query string
		want  int
	}{
		{"confidence=92", 92},
		{"confidence=250", 100},
		{"confidence=-5", 0},
		{"confidence=junk", 0},
		{"", 0},
	}
	for _, tt := range tests {
		rec := doJSON(t, r, http.MethodGet, "/api/results?locationId=jemaa-el-fna&"+tt.query, nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, rec.Code)
		}
		resp := decode[ResultsResponse](t, rec)
		if resp.Confidence != tt.want {
			t.Errorf("%s: confidence = %d, want %d", tt.query, resp.Confidence, tt.want)
		}
		if resp.Location == nil || resp.Location.ID != "jemaa-el-fna" {
			t.Errorf("%s: location not resolved", tt.query)
		}
	}
}

func TestResultsNearbySuggestions(t *testing.T) {
	r := testRouter(t)
	cookie := login(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/results?locationId=majorelle-garden&confidence=80", nil, cookie)
	resp := decode[ResultsResponse](t, rec)
	if resp.Attraction == nil || resp.Attraction.ID != "majorelle-garden" {
		t.Error("attraction id not resolved")
	}
	if len(resp.NearbyHotels) == 0 || len(resp.NearbyRestaurants) == 0 {
		t.Error("no nearby suggestions in results")
	}
}
