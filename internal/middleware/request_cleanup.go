package middleware

import (
	"io"
	"net/http"
)

// bodies larger than this are closed without being read to the end
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest reads what the handler left of the request body and
// closes it, so the connection can be reused for the next request.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
