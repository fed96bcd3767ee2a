package server

import (
	"errors"
	"net/http"

	"github.com/exploremaroc/companion/internal/session"
)

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := sessions.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, session.ErrMissingCredentials) {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		session.WriteCookie(w, rec)
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleSignup(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.SignupParams
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := sessions.Signup(r.Context(), req)
		if errors.Is(err, session.ErrMissingCredentials) {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "signup failed")
			return
		}

		session.WriteCookie(w, rec)
		writeJSON(w, http.StatusCreated, rec)
	}
}

func handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session.ClearCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := session.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
