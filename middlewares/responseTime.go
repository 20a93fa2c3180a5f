package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"blog-viewstats/metrics"

	"github.com/gorilla/mux"
)

type timedResponseWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (t *timedResponseWriter) WriteHeader(statusCode int) {
	if !t.wroteHeader {
		elapsed := time.Since(t.start)
		t.ResponseWriter.Header().Set("X-Response-Time", elapsed.String())
		t.status = statusCode
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(statusCode)
}

func (t *timedResponseWriter) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}

// ResponseTimeMiddleware sets X-Response-Time and records request metrics
// labelled by the matched route template.
func ResponseTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw := &timedResponseWriter{
			ResponseWriter: w,
			start:          start,
		}
		next.ServeHTTP(tw, r)

		status := tw.status
		if !tw.wroteHeader {
			status = http.StatusOK
		}
		route := routeTemplate(r)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
