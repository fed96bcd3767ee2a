package server

import (
	"context"
	"net/http"

	"github.com/exploremaroc/companion/internal/session"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// requireUser rejects requests without a valid session cookie.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := session.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) session.Record {
	return r.Context().Value(ctxKeyUser).(session.Record)
}
