package service

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks Store,EvidenceStorer,EvidencePurger,AuditPublisher

import (
	"context"
	"time"

	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	audit "confessional/pkg/platform/audit"
)

// Store persists principals and reports pkg/platform/sentinel errors.
type Store interface {
	Create(ctx context.Context, p *models.Principal) error
	FindByID(ctx context.Context, principalID id.PrincipalID) (*models.Principal, error)
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	TransitionStatus(ctx context.Context, principalID id.PrincipalID, from, to models.Status, at time.Time) (*models.Principal, error)
	SetBanned(ctx context.Context, principalID id.PrincipalID, banned bool, at time.Time) (bool, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Principal, error)
	UpsertAdmin(ctx context.Context, p *models.Principal) (*models.Principal, error)
}

// EvidenceStorer validates and stores identity evidence, returning its key.
// Errors already carry domain codes.
type EvidenceStorer interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// EvidencePurger deletes evidence after adjudication. Schedule never fails:
// a deletion that cannot complete inline is queued for retry.
type EvidencePurger interface {
	Schedule(ctx context.Context, principalID id.PrincipalID, key string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
