package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exploremaroc/companion/internal/catalog"
	"github.com/exploremaroc/companion/internal/progress"
)

// VisitResponse is returned after marking a place visited.
type VisitResponse struct {
	LocationID string `json:"locationId"`
	Visited    bool   `json:"visited"`
}

func handleVisit(logger *slog.Logger, c *catalog.Catalog, svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !c.HasPlace(id) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}

		user := userFrom(r)
		if err := svc.MarkVisited(r.Context(), user.ID, id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// A visit can unlock the city achievements.
		if _, err := svc.Check(r.Context(), user.ID); err != nil {
			logger.Error("achievement check failed", "user_id", user.ID, "error", err)
		}

		writeJSON(w, http.StatusOK, VisitResponse{LocationID: id, Visited: true})
	}
}
