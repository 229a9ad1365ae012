package testutil

import (
	"time"

	"github.com/google/uuid"

	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
)

// TestIDs provides fixed IDs for deterministic test data.
var TestIDs = struct {
	PrincipalID1  id.PrincipalID
	PrincipalID2  id.PrincipalID
	AdminID       id.PrincipalID
	ConfessionID1 id.ConfessionID
	ConfessionID2 id.ConfessionID
}{
	PrincipalID1:  id.PrincipalID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	PrincipalID2:  id.PrincipalID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	AdminID:       id.PrincipalID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	ConfessionID1: id.ConfessionID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	ConfessionID2: id.ConfessionID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
}

// PrincipalBuilder builds test principals. The default is a pending user holding evidence.
type PrincipalBuilder struct {
	principal *models.Principal
}

func NewPrincipalBuilder() *PrincipalBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &PrincipalBuilder{
		principal: &models.Principal{
			ID:             id.NewPrincipalID(),
			Email:          "user-" + uuid.NewString()[:8] + "@example.com",
			CredentialHash: "$2a$10$abcdefghijklmnopqrstuuN0R9zT9CmxZpJ5bq4k3Xz2WQm8sY0xa",
			Status:         models.StatusPending,
			Role:           models.RoleUser,
			EvidenceKey:    "evidence/" + uuid.NewString(),
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}

func (b *PrincipalBuilder) WithID(principalID id.PrincipalID) *PrincipalBuilder {
	b.principal.ID = principalID
	return b
}

func (b *PrincipalBuilder) WithEmail(email string) *PrincipalBuilder {
	b.principal.Email = email
	return b
}

func (b *PrincipalBuilder) WithStatus(status models.Status) *PrincipalBuilder {
	b.principal.Status = status
	return b
}

func (b *PrincipalBuilder) Approved() *PrincipalBuilder {
	return b.WithStatus(models.StatusApproved)
}

func (b *PrincipalBuilder) Banned() *PrincipalBuilder {
	b.principal.Status = models.StatusApproved
	b.principal.Banned = true
	return b
}

func (b *PrincipalBuilder) Admin() *PrincipalBuilder {
	b.principal.Status = models.StatusApproved
	b.principal.Role = models.RoleAdmin
	b.principal.EvidenceKey = ""
	return b
}

func (b *PrincipalBuilder) WithoutEvidence() *PrincipalBuilder {
	b.principal.EvidenceKey = ""
	return b
}

func (b *PrincipalBuilder) CreatedAt(t time.Time) *PrincipalBuilder {
	b.principal.CreatedAt = t
	b.principal.UpdatedAt = t
	return b
}

func (b *PrincipalBuilder) Build() *models.Principal {
	out := *b.principal
	return &out
}

// PNGBytes is a minimal payload that http.DetectContentType sniffs as image/png.
var PNGBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
