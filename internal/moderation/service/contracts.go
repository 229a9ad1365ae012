package service

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks ReportStore,Verifier,Content,Tokenizer,EvidenceLocator,AuditPublisher

import (
	"context"

	"confessional/internal/access"
	cmodels "confessional/internal/confession/models"
	"confessional/internal/moderation/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/privacy"
)

// ReportStore persists reports and reports pkg/platform/sentinel errors.
type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	List(ctx context.Context, after *paging.Cursor, limit int) ([]*models.Report, error)
}

// Verifier is the slice of the verification service moderation drives.
// Errors carry domain codes.
type Verifier interface {
	Require(ctx context.Context, principalID id.PrincipalID, action access.Action) (*vmodels.Principal, error)
	SetBanned(ctx context.Context, actorID, principalID id.PrincipalID, banned bool) error
	ListPrincipals(ctx context.Context, actorID id.PrincipalID, filter vmodels.ListFilter) ([]*vmodels.Principal, error)
}

// Content is the slice of the confession service moderation drives.
// Errors carry domain codes.
type Content interface {
	GetForAudit(ctx context.Context, confessionID id.ConfessionID) (*cmodels.Confession, error)
	MarkRemoved(ctx context.Context, confessionID id.ConfessionID) (bool, error)
	Summaries(ctx context.Context, ids []id.ConfessionID) (map[id.ConfessionID]cmodels.Summary, error)
	CountByAuthors(ctx context.Context, authors []id.PrincipalID) (map[id.PrincipalID]int, error)
}

type Tokenizer interface {
	Token(principalID id.PrincipalID) privacy.ActionToken
}

// EvidenceLocator turns an evidence key into a URL for adjudicators.
type EvidenceLocator interface {
	URLFor(key string) string
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
