// Package httptransport assembles the public HTTP surface. Handlers stay thin
// and delegate to the domain services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "confessional/internal/auth/handler"
	confessionhandler "confessional/internal/confession/handler"
	moderationhandler "confessional/internal/moderation/handler"
	"confessional/internal/platform/health"
	"confessional/internal/ratelimit"
	verificationhandler "confessional/internal/verification/handler"
	"confessional/pkg/platform/middleware/auth"
	"confessional/pkg/platform/middleware/metadata"
	"confessional/pkg/platform/middleware/request"
)

// DefaultMaxBodyBytes leaves room for multipart framing around a maximum size upload.
const DefaultMaxBodyBytes int64 = 5 << 20

// Handlers groups the per-module HTTP handlers.
type Handlers struct {
	Health       *health.Handler
	Auth         *authhandler.Handler
	Verification *verificationhandler.Handler
	Confessions  *confessionhandler.Handler
	Moderation   *moderationhandler.Handler
}

// Config carries the transport knobs from process configuration.
type Config struct {
	OperationTimeout time.Duration
	MaxBodyBytes     int64
	TrustedProxies   []string
}

// Router builds the chi router.
type Router struct {
	handlers  Handlers
	validator auth.JWTValidator
	limits    *ratelimit.Middleware
	metrics   *request.Metrics
	cfg       Config
	logger    *slog.Logger
}

type Option func(*Router)

// WithRateLimits enables per-class IP rate limiting.
func WithRateLimits(m *ratelimit.Middleware) Option {
	return func(r *Router) { r.limits = m }
}

// WithMetrics records per-route latency.
func WithMetrics(m *request.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// NewRouter wires every endpoint with its middleware stack.
func NewRouter(handlers Handlers, validator auth.JWTValidator, cfg Config, logger *slog.Logger, opts ...Option) http.Handler {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	rt := &Router{
		handlers:  handlers,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt.build()
}

func (rt *Router) build() http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(rt.logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(rt.cfg.TrustedProxies).Handler)
	r.Use(request.Time)
	r.Use(request.Logger(rt.logger))
	r.Use(request.Latency(rt.metrics))
	r.Use(request.OperationTimeout(rt.cfg.OperationTimeout))
	r.Use(request.BodyLimit(rt.cfg.MaxBodyBytes))

	if rt.handlers.Health != nil {
		rt.handlers.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rt.limit(ratelimit.ClassAuth))
		if rt.handlers.Verification != nil {
			rt.handlers.Verification.RegisterPublic(r)
		}
		if rt.handlers.Auth != nil {
			r.With(request.ContentTypeJSON).Group(rt.handlers.Auth.Register)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(rt.validator, rt.logger))

		r.Group(func(r chi.Router) {
			r.Use(rt.limit(ratelimit.ClassRead))
			if rt.handlers.Confessions != nil {
				rt.handlers.Confessions.RegisterReads(r)
			}
			if rt.handlers.Moderation != nil {
				rt.handlers.Moderation.RegisterAdminReads(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limit(ratelimit.ClassWrite))
			if rt.handlers.Confessions != nil {
				rt.handlers.Confessions.RegisterWrites(r)
			}
			if rt.handlers.Moderation != nil {
				r.With(request.ContentTypeJSON).Group(rt.handlers.Moderation.Register)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limit(ratelimit.ClassWrite))
			r.Use(request.ContentTypeJSON)
			if rt.handlers.Verification != nil {
				rt.handlers.Verification.RegisterAdmin(r)
			}
			if rt.handlers.Moderation != nil {
				rt.handlers.Moderation.RegisterAdminWrites(r)
			}
		})
	})

	return r
}

func (rt *Router) limit(class ratelimit.Class) func(http.Handler) http.Handler {
	if rt.limits == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rt.limits.RateLimit(class)
}
