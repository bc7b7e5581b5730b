// file: internal/middleware/rate_limiter.go
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"badgehub/internal/cache"

	"go.uber.org/zap"
)

// RateLimiterConfig holds rate limiting configuration.
type RateLimiterConfig struct {
	Enabled           bool          `json:"enabled"`
	RequestsPerWindow int           `json:"requests_per_window"`
	Window            time.Duration `json:"window"`
	TrustForwardedFor bool          `json:"trust_forwarded_for"`
}

// DefaultRateLimiterConfig returns sensible defaults for the API surface.
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Enabled:           true,
		RequestsPerWindow: 300,
		Window:            time.Minute,
		TrustForwardedFor: true,
	}
}

// RateLimiter implements a fixed-window limiter keyed by client IP,
// with counters kept in the shared cache so limits hold across replicas.
type RateLimiter struct {
	cache  cache.Cache
	config *RateLimiterConfig
	logger *zap.Logger
}

// NewRateLimiter creates a rate limiter backed by the given cache.
func NewRateLimiter(c cache.Cache, config *RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	return &RateLimiter{cache: c, config: config, logger: logger}
}

// Middleware returns the HTTP middleware enforcing the configured limit.
// Cache failures fail open: an unreachable cache must not take the API down.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			window := time.Now().Unix() / int64(rl.config.Window.Seconds())
			key := fmt.Sprintf("ratelimit:%s:%d", clientIP, window)

			count, err := rl.cache.Increment(r.Context(), key, 1)
			if err != nil {
				rl.logger.Warn("rate limiter cache unavailable, allowing request",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := rl.config.RequestsPerWindow - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > rl.config.RequestsPerWindow {
				rl.logger.Warn("rate limit exceeded",
					zap.String("client_ip", clientIP),
					zap.Int64("count", count),
					zap.String("path", r.URL.Path),
				)
				retryAfter := rl.config.Window.Seconds()
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"error":{"type":"RATE_LIMITED","message":"Too many requests"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
