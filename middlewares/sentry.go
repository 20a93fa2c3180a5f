package middlewares

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

// SentryScopeMiddleware tags the request hub created by sentryhttp with the
// request id so captured errors can be matched to access log lines.
func SentryScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetTag("request_id", RequestIDFromContext(r.Context()))
			hub.Scope().SetTag("route", routeTemplate(r))
		}
		next.ServeHTTP(w, r)
	})
}

// CaptureError logs err and reports it to Sentry through the request hub,
// falling back to the current hub outside of a request.
func CaptureError(r *http.Request, err error, msg string) {
	log.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg(msg)

	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
