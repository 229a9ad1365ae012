// Package service authenticates principals by credential and issues bearer
// tokens. It never reveals whether an email is registered.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"confessional/internal/auth/metrics"
	"confessional/internal/ratelimit"
	"confessional/internal/verification/models"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/sentinel"
	"confessional/pkg/secrets"
)

// LoginResult is the issued bearer token.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service struct {
	credentials Credentials
	tokens      TokenIssuer
	limiter     FailureLimiter
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFailureLimiter locks a credential out after repeated failed logins.
func WithFailureLimiter(l FailureLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

func New(credentials Credentials, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	s := &Service{credentials: credentials, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login checks the credential and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, s.fail(ctx, email, "missing_credentials")
	}

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, ratelimit.ClassLoginFailure, email)
		if err != nil {
			s.logger.WarnContext(ctx, "login limiter unavailable", "error", err)
		} else if blocked {
			s.count("locked")
			return nil, ratelimit.ErrLimited()
		}
	}

	p, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.count("error")
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sentinel.ErrUnavailable) {
				return nil, dErrors.Wrap(err, dErrors.CodeTransient, "credential store unavailable")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
		}
		// keep timing close to the known-email path
		_ = secrets.VerifyMissing(password)
		return nil, s.fail(ctx, email, "unknown_email")
	}
	if err := secrets.Verify(password, p.CredentialHash); err != nil {
		return nil, s.fail(ctx, email, "wrong_password")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, ratelimit.ClassLoginFailure, email); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login failures", "error", err)
		}
	}
	token, expiresAt, err := s.tokens.GenerateAccessToken(ctx, p.ID)
	if err != nil {
		s.count("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.count("success")
	s.logger.InfoContext(ctx, "login succeeded", "principal_id", p.ID)
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

func (s *Service) fail(ctx context.Context, email, reason string) error {
	if s.limiter != nil && email != "" {
		if _, err := s.limiter.Check(ctx, ratelimit.ClassLoginFailure, email); err != nil {
			s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.IncAuthFailure()
	}
	s.count("unauthorized")
	s.logger.InfoContext(ctx, "login rejected", "reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncLogin(outcome)
	}
}
