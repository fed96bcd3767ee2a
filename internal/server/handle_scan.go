package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exploremaroc/companion/internal/recognition"
	"github.com/exploremaroc/companion/internal/scan"
)

// ScanRequest is the request body for POST /api/scan.
type ScanRequest struct {
	ImageRef string `json:"imageRef"`
}

// ScanSelectRequest is the request body for POST /api/scan/select.
type ScanSelectRequest struct {
	LocationID string `json:"locationId"`
}

// ScanAccepted is the response for a started scan.
type ScanAccepted struct {
	ScanID string `json:"scanId"`
}

func handleScanStart(orch *scan.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user := userFrom(r)
		snap, err := orch.Start(user.ID, req.ImageRef)
		switch {
		case errors.Is(err, recognition.ErrNoImage):
			writeError(w, http.StatusBadRequest, "imageRef is required")
			return
		case errors.Is(err, scan.ErrScanInFlight):
			writeError(w, http.StatusConflict, "a scan is already in progress")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, ScanAccepted{ScanID: snap.ID})
	}
}

func handleScanGet(orch *scan.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := orch.Get(chi.URLParam(r, "id"))
		if errors.Is(err, scan.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleScanReset(orch *scan.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := orch.Reset(chi.URLParam(r, "id"))
		if errors.Is(err, scan.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleScanSelect(orch *scan.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanSelectRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user := userFrom(r)
		snap, err := orch.Select(user.ID, req.LocationID)
		switch {
		case errors.Is(err, scan.ErrNotFound):
			writeError(w, http.StatusNotFound, "location not found")
			return
		case errors.Is(err, scan.ErrScanInFlight):
			writeError(w, http.StatusConflict, "a scan is already in progress")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, ScanAccepted{ScanID: snap.ID})
	}
}
