package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// Auth guards the generation endpoints with a shared token, the service's
// stand-in for the host's can-current-user-generate check. An empty token
// disables the check for local development.
func Auth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || validToken(r, token) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success":    false,
				"error_code": "unauthorized",
				"error":      "missing or invalid auth token",
			})
		})
	}
}

func validToken(r *http.Request, token string) bool {
	candidate := r.Header.Get("X-Auth-Token")
	if candidate == "" {
		bearer := r.Header.Get("Authorization")
		if strings.HasPrefix(bearer, "Bearer ") {
			candidate = strings.TrimPrefix(bearer, "Bearer ")
		}
	}
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1
}
