package server

import (
	"log/slog"
	"net/http"

	"github.com/exploremaroc/companion/internal/progress"
)

// ThemeResponse is the persisted theme preference.
type ThemeResponse struct {
	Theme string `json:"theme"`
}

func handleTheme(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		theme, err := svc.Theme(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
	}
}

func handleSetTheme(logger *slog.Logger, svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThemeResponse
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Theme != "dark" && req.Theme != "light" {
			writeError(w, http.StatusBadRequest, "theme must be dark or light")
			return
		}

		user := userFrom(r)
		if err := svc.SetTheme(r.Context(), user.ID, req.Theme); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Switching to dark can unlock the night-mode achievement.
		if _, err := svc.Check(r.Context(), user.ID); err != nil {
			logger.Error("achievement check failed", "user_id", user.ID, "error", err)
		}

		writeJSON(w, http.StatusOK, req)
	}
}
