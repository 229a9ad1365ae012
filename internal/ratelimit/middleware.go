package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"confessional/pkg/platform/httputil"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/requestcontext"
)

// Middleware limits requests per client IP.
type Middleware struct {
	limiter *Limiter
	logger  *slog.Logger
}

func NewMiddleware(limiter *Limiter, logger *slog.Logger) *Middleware {
	return &Middleware{limiter: limiter, logger: logger}
}

// RateLimit rejects requests over the class limit with 429. A store failure
// lets the request through.
func (m *Middleware) RateLimit(class Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Check(ctx, class, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"ip_prefix", privacy.AnonymizeIP(ip),
				)
				if m.limiter.metrics != nil {
					m.limiter.metrics.IncFailOpen()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, ErrLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
