package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exploremaroc/companion/internal/catalog"
	"github.com/exploremaroc/companion/internal/database"
	"github.com/exploremaroc/companion/internal/keyval"
	"github.com/exploremaroc/companion/internal/migrations"
	"github.com/exploremaroc/companion/internal/progress"
	"github.com/exploremaroc/companion/internal/recognition"
	"github.com/exploremaroc/companion/internal/scan"
	"github.com/exploremaroc/companion/internal/session"
)

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	instant := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	broker := NewBroker()
	svc := progress.NewService(keyval.NewSQLiteStore(db), func(userID string, a progress.Achievement) {
		broker.Publish(userID, map[string]any{"type": "achievement_unlocked", "achievement": a})
	})
	tracker := progress.NewTracker(svc, slog.Default(), time.Second)
	sim := recognition.NewSimulator(cat, recognition.WithSleep(instant))
	orch := scan.NewOrchestrator(ctx, sim, svc, cat, slog.Default(),
		func(userID string, e scan.Event) { broker.Publish(userID, e) },
		scan.WithSleep(instant))
	sessions := session.NewStore(db, session.WithSleep(instant))

	r := chi.NewRouter()
	addRoutes(r, slog.Default(), Deps{
		DB:       db,
		Catalog:  cat,
		Sessions: sessions,
		Progress: svc,
		Tracker:  tracker,
		Scans:    orch,
		Broker:   broker,
	}, "")
	return r
}

// login signs in a demo user and returns the session cookie.
func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(LoginRequest{Email: "demo@example.com", Password: "pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the user cookie")
	return nil
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}
