package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"blog-viewstats/cache"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// RateLimitMiddleware allows maxRequest requests per client IP and path in
// each fixed window. Counter errors let the request pass.
func RateLimitMiddleware(counter cache.Counter, maxRequest int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rate:" + ClientIP(r) + ":" + r.URL.Path

			count, ttl, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				log.Warn().Err(err).Msg("rate limit counter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			remaining := maxRequest - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(maxRequest, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

			if count > maxRequest {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded. Try again later."})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
