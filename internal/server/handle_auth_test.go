package server

import (
	"net/http"
	"testing"

	"github.com/exploremaroc/companion/internal/session"
)

func TestAuthFlow(t *testing.T) {
	r := testRouter(t)

	// Unauthenticated /me is rejected.
	rec := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without cookie: status = %d, want 401", rec.Code)
	}

	cookie := login(t, r)

	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d", rec.Code)
	}
	me := decode[session.Record](t, rec)
	if me.Email != "demo@example.com" {
		t.Errorf("me email = %q", me.Email)
	}
	if me.FirstName != "Demo" {
		t.Errorf("me first name = %q, want fabricated demo profile", me.FirstName)
	}

	// Logout clears the cookie; doing it twice is fine.
	rec = doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Errorf("logout: status = %d, want 204", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the user cookie")
	}
	rec = doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second logout: status = %d, want 204", rec.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	r := testRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "a@b.com"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", rec.Code)
	}
}

func TestSignupThenLogin(t *testing.T) {
	r := testRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/signup", session.SignupParams{
		FirstName: "Amina",
		LastName:  "Benali",
		Email:     "amina@example.com",
		Password:  "s3cret",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[session.Record](t, rec)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "amina@example.com",
		Password: "s3cret",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d", rec.Code)
	}
	got := decode[session.Record](t, rec)
	if got.ID != created.ID || got.FirstName != "Amina" {
		t.Errorf("login returned %+v, want the stored profile", got)
	}
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/api/achievements", "/api/theme", "/api/results"} {
		rec := doJSON(t, r, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without cookie: status = %d, want 401", path, rec.Code)
		}
	}
}
