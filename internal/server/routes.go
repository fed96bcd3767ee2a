package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Explore Maroc API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, d.DB, d.Redis))

	r.Route("/api", func(r chi.Router) {
		// Auth is always reachable; login and signup set the user cookie.
		r.Post("/auth/login", handleLogin(d.Sessions))
		r.Post("/auth/signup", handleSignup(d.Sessions))
		r.Post("/auth/logout", handleLogout())
		r.Get("/auth/me", handleMe())

		// Catalog is public and read-only.
		r.Get("/locations", handleListLocations(d.Catalog))
		r.Get("/locations/{id}", handleGetLocation(d.Catalog))
		r.Get("/attractions", handleListAttractions(d.Catalog))
		r.Get("/attractions/{id}", handleGetAttraction(d.Catalog))
		r.Get("/hotels", handleListHotels(d.Catalog))
		r.Get("/hotels/{id}", handleGetHotel(d.Catalog))
		r.Get("/restaurants", handleListRestaurants(d.Catalog))
		r.Get("/restaurants/{id}", handleGetRestaurant(d.Catalog))
		r.Get("/transports", handleListTransports(d.Catalog))
		r.Get("/categories", handleListCategories(d.Catalog))

		// Everything else requires the user cookie.
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/locations/{id}/visit", handleVisit(logger, d.Catalog, d.Progress))

			r.Post("/scan", handleScanStart(d.Scans))
			r.Post("/scan/select", handleScanSelect(d.Scans))
			r.Get("/scan/{id}", handleScanGet(d.Scans))
			r.Post("/scan/{id}/reset", handleScanReset(d.Scans))
			r.Get("/scan/{id}/stream", handleScanStream(logger, d.Scans, d.Broker))

			r.Get("/results", handleResults(d.Catalog))
			r.Get("/achievements", handleAchievements(d.Progress))
			r.Get("/events", handleEvents(d.Broker, d.Tracker))

			r.Get("/theme", handleTheme(d.Progress))
			r.Put("/theme", handleSetTheme(logger, d.Progress))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
