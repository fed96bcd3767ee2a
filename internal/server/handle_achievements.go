package server

import (
	"net/http"

	"github.com/exploremaroc/companion/internal/progress"
)

// AchievementsResponse is the response for GET /api/achievements.
type AchievementsResponse struct {
	Achievements []progress.Achievement `json:"achievements"`
	TotalPoints  int                    `json:"totalPoints"`
}

func handleAchievements(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		achievements, total, err := svc.Evaluate(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AchievementsResponse{
			Achievements: achievements,
			TotalPoints:  total,
		})
	}
}
