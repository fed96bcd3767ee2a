package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/exploremaroc/companion/internal/catalog"
	"github.com/exploremaroc/companion/internal/scan"
	"github.com/exploremaroc/companion/internal/session"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Explore Maroc API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Explore Maroc travel companion.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/auth/login")
	postLogin.SetSummary("Log in")
	postLogin.SetDescription("Authenticate with email and password. Any non-empty pair succeeds. Sets the user cookie.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(session.Record{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postLogin)

	// POST /api/auth/signup
	postSignup, _ := r.NewOperationContext(http.MethodPost, "/api/auth/signup")
	postSignup.SetSummary("Sign up")
	postSignup.SetDescription("Create an account and sign in. Sets the user cookie.")
	postSignup.AddReqStructure(session.SignupParams{})
	postSignup.AddRespStructure(session.Record{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSignup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSignup)

	// POST /api/auth/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/auth/logout")
	postLogout.SetSummary("Log out")
	postLogout.SetDescription("Clears the user cookie. Idempotent.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLogout)

	// GET /api/auth/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/auth/me")
	getMe.SetSummary("Current user")
	getMe.SetDescription("Returns the signed-in user. Requires the user cookie.")
	getMe.AddRespStructure(session.Record{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/locations
	listLocations, _ := r.NewOperationContext(http.MethodGet, "/api/locations")
	listLocations.SetSummary("List locations")
	listLocations.SetDescription("Returns all recognizable landmark locations.")
	listLocations.AddRespStructure([]catalog.Location{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listLocations)

	// GET /api/locations/{id}
	getLocation, _ := r.NewOperationContext(http.MethodGet, "/api/locations/{id}")
	getLocation.SetSummary("Get location")
	getLocation.AddRespStructure(catalog.Location{}, openapi.WithHTTPStatus(http.StatusOK))
	getLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLocation)

	// POST /api/locations/{id}/visit
	postVisit, _ := r.NewOperationContext(http.MethodPost, "/api/locations/{id}/visit")
	postVisit.SetSummary("Mark location visited")
	postVisit.SetDescription("Records a visit for the signed-in user and re-evaluates achievements.")
	postVisit.AddRespStructure(VisitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postVisit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postVisit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postVisit)

	// GET /api/attractions
	listAttractions, _ := r.NewOperationContext(http.MethodGet, "/api/attractions")
	listAttractions.SetSummary("List attractions")
	listAttractions.AddRespStructure([]catalog.Attraction{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listAttractions)

	// GET /api/attractions/{id}
	getAttraction, _ := r.NewOperationContext(http.MethodGet, "/api/attractions/{id}")
	getAttraction.SetSummary("Get attraction")
	getAttraction.AddRespStructure(catalog.Attraction{}, openapi.WithHTTPStatus(http.StatusOK))
	getAttraction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getAttraction)

	// GET /api/hotels
	listHotels, _ := r.NewOperationContext(http.MethodGet, "/api/hotels")
	listHotels.SetSummary("List hotels")
	listHotels.AddRespStructure([]catalog.Hotel{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listHotels)

	// GET /api/hotels/{id}
	getHotel, _ := r.NewOperationContext(http.MethodGet, "/api/hotels/{id}")
	getHotel.SetSummary("Get hotel")
	getHotel.AddRespStructure(catalog.Hotel{}, openapi.WithHTTPStatus(http.StatusOK))
	getHotel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHotel)

	// GET /api/restaurants
	listRestaurants, _ := r.NewOperationContext(http.MethodGet, "/api/restaurants")
	listRestaurants.SetSummary("List restaurants")
	listRestaurants.AddRespStructure([]catalog.Restaurant{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listRestaurants)

	// GET /api/restaurants/{id}
	getRestaurant, _ := r.NewOperationContext(http.MethodGet, "/api/restaurants/{id}")
	getRestaurant.SetSummary("Get restaurant")
	getRestaurant.AddRespStructure(catalog.Restaurant{}, openapi.WithHTTPStatus(http.StatusOK))
	getRestaurant.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRestaurant)

	// GET /api/transports
	listTransports, _ := r.NewOperationContext(http.MethodGet, "/api/transports")
	listTransports.SetSummary("List transport options")
	listTransports.AddRespStructure([]catalog.Transport{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTransports)

	// GET /api/categories
	listCategories, _ := r.NewOperationContext(http.MethodGet, "/api/categories")
	listCategories.SetSummary("List explore categories")
	listCategories.AddRespStructure([]catalog.Category{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listCategories)

	// POST /api/scan
	postScan, _ := r.NewOperationContext(http.MethodPost, "/api/scan")
	postScan.SetSummary("Start a scan")
	postScan.SetDescription("Starts the recognition pipeline for a captured image. Progress is published to the scan's stream. One scan per user at a time.")
	postScan.AddReqStructure(ScanRequest{})
	postScan.AddRespStructure(ScanAccepted{}, openapi.WithHTTPStatus(http.StatusAccepted))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postScan)

	// POST /api/scan/select
	postSelect, _ := r.NewOperationContext(http.MethodPost, "/api/scan/select")
	postSelect.SetSummary("Select a location directly")
	postSelect.SetDescription("Desktop fallback: synthesizes a recognition result for a chosen location, skipping the camera stages.")
	postSelect.AddReqStructure(ScanSelectRequest{})
	postSelect.AddRespStructure(ScanAccepted{}, openapi.WithHTTPStatus(http.StatusAccepted))
	postSelect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSelect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSelect)

	// GET /api/scan/{id}
	getScan, _ := r.NewOperationContext(http.MethodGet, "/api/scan/{id}")
	getScan.SetSummary("Get scan state")
	getScan.SetDescription("Returns the scan's current stage, confidence, and result.")
	getScan.AddRespStructure(scan.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getScan)

	// POST /api/scan/{id}/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/scan/{id}/reset")
	postReset.SetSummary("Reset a scan")
	postReset.SetDescription("Cancels any in-flight pipeline and returns the scan to idle.")
	postReset.AddRespStructure(scan.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postReset)

	// GET /api/scan/{id}/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/scan/{id}/stream")
	getStream.SetSummary("Scan progress stream")
	getStream.SetDescription("Upgrades to a WebSocket carrying the scan's stage and confidence updates until it completes.")
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getStream)

	// GET /api/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/results")
	getResults.SetSummary("Results view data")
	getResults.SetDescription("Resolves a recognized location with nearby suggestions. An unknown id is reported in the body, never as an error status.")
	getResults.AddRespStructure(ResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getResults)

	// GET /api/achievements
	getAchievements, _ := r.NewOperationContext(http.MethodGet, "/api/achievements")
	getAchievements.SetSummary("List achievements")
	getAchievements.SetDescription("Returns the evaluated achievement list and total points for the signed-in user.")
	getAchievements.AddRespStructure(AchievementsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getAchievements.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getAchievements)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of milestone and achievement events for the signed-in user.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/theme
	getTheme, _ := r.NewOperationContext(http.MethodGet, "/api/theme")
	getTheme.SetSummary("Get theme preference")
	getTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getTheme)

	// PUT /api/theme
	putTheme, _ := r.NewOperationContext(http.MethodPut, "/api/theme")
	putTheme.SetSummary("Set theme preference")
	putTheme.SetDescription("Persists the dark or light preference for the signed-in user.")
	putTheme.AddReqStructure(ThemeResponse{})
	putTheme.AddRespStructure(ThemeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putTheme.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(putTheme)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
