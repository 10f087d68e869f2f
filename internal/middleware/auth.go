// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
)

// Claims is the identity carried by a verified bearer token.
type Claims struct {
	Username string
	Role     string
	UserID   string
}

// Authenticator rejects requests whose bearer token was missing or did not
// verify. It must run after jwtauth.Verifier.
//
// Rejections are JSON bodies of the form {"message": "..."} with status 401.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		switch {
		case errors.Is(err, jwtauth.ErrNoTokenFound), err == nil && token == nil:
			unauthorized(w, "Token is missing!")
			return
		case errors.Is(err, jwtauth.ErrExpired):
			unauthorized(w, "Token has expired")
			return
		case err != nil:
			unauthorized(w, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// ClaimsFromContext returns the identity of the verified token, or the zero
// Claims when the request carried none.
func ClaimsFromContext(ctx context.Context) Claims {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}
	}
	str := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	return Claims{Username: str("username"), Role: str("role"), UserID: str("user_id")}
}
