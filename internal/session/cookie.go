package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// CookieName holds the serialized session Record.
const CookieName = "user"

const cookieMaxAge = int(7 * 24 * time.Hour / time.Second)

var ErrNoSession = errors.New("no valid session")

// WriteCookie stores the record as a base64-encoded JSON cookie.
func WriteCookie(w http.ResponseWriter, rec Record) {
	data, _ := json.Marshal(rec)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie. Clearing an absent cookie is a
// no-op, so logout is idempotent.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest restores the record from the session cookie. A missing or
// corrupt cookie yields ErrNoSession; the caller treats that as a
// logged-out request.
func FromRequest(r *http.Request) (Record, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Record{}, ErrNoSession
	}
	data, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return Record{}, ErrNoSession
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || rec.ID == "" {
		return Record{}, ErrNoSession
	}
	return rec, nil
}
