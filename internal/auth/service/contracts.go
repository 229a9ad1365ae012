package service

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks Credentials,TokenIssuer,FailureLimiter

import (
	"context"
	"time"

	"confessional/internal/ratelimit"
	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
)

// Credentials looks principals up by email. Returns pkg/platform/sentinel errors.
type Credentials interface {
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
}

type TokenIssuer interface {
	GenerateAccessToken(ctx context.Context, principalID id.PrincipalID) (string, time.Time, error)
}

// FailureLimiter counts failed logins per credential.
type FailureLimiter interface {
	Blocked(ctx context.Context, class ratelimit.Class, key string) (bool, error)
	Check(ctx context.Context, class ratelimit.Class, key string) (*ratelimit.Result, error)
	Reset(ctx context.Context, class ratelimit.Class, key string) error
}
