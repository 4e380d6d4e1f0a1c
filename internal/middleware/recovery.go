package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/telemetry/metrics"
	"github.com/2beens/blogql/pkg"
)

// same shape as a graphql error response, so clients need only one decoder
var panicResponse = []byte(`{"errors":[{"message":"internal error","extensions":{"code":"INTERNAL"}}]}`)

// PanicRecovery turns a handler panic into a 500, counts it and reports it to sentry.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				log.Errorf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, recovered, debug.Stack())
				sentry.CurrentHub().Recover(fmt.Errorf("panic serving %s: %v", r.URL.Path, recovered))
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteResponseBytes(w, pkg.ContentType.JSON, panicResponse, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
