package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/infrastructure/redis"
	"github.com/jiayou/auth-service/internal/logger"
	appCtx "github.com/jiayou/auth-service/internal/pkg/context"
)

type RateLimiter interface {
	Allow(ctx context.Context, scope, principal string, limit int, window time.Duration) (redis.Decision, error)
}

// FixedWindowConfig defines the configuration for a fixed-window rate limit.
type FixedWindowConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
}

func (c FixedWindowConfig) withDefaults() FixedWindowConfig {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Scope == "" {
		c.Scope = "unknown"
	}
	return c
}

// RateLimitFixedWindow throttles by client IP against a shared limiter. A
// limiter error lets the request through.
func RateLimitFixedWindow(limiter RateLimiter, cfg FixedWindowConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || cfg.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			dec, err := limiter.Allow(r.Context(), cfg.Scope, principal(r), cfg.Limit, cfg.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("scope", cfg.Scope).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				secs := int((dec.RetryAfter + time.Second - 1) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				rejectLimited(w, r, cfg.Scope, writeErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitInMemory keeps per-IP counters in process memory. It is the
// fallback when Redis is not available, so limits are per instance.
func RateLimitInMemory(cfg FixedWindowConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	if cfg.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.Limit,
		cfg.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return cfg.Scope + ":" + principal(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rejectLimited(w, r, cfg.Scope, writeErr)
		}),
	)
}

func rejectLimited(w http.ResponseWriter, r *http.Request, scope string, writeErr WriteErrFunc) {
	if scope == "login" {
		LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
	}
	writeErr(w, r, domain.ErrRateLimited(scope))
}

func principal(r *http.Request) string {
	ip := appCtx.GetClientIP(r.Context())
	if ip == "" {
		ip = clientIP(r)
	}
	return "ip:" + ip
}
