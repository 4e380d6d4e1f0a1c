package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/blogql/internal/auth"
)

// accepted Authorization header schemes
var tokenPrefixes = []string{"JWT ", "Bearer "}

// BearerToken copies the request credential into the request context.
// The credential is verified later, only by operations that need an actor.
func BearerToken() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithToken(r.Context(), token)))
		})
	}
}

func tokenFromHeader(header string) string {
	for _, prefix := range tokenPrefixes {
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	return ""
}
