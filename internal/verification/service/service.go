// Package service is the verification state machine: registration, one-shot
// adjudication, ban management and capability lookups.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"confessional/internal/access"
	"confessional/internal/verification/metrics"
	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/platform/sentinel"
	"confessional/pkg/secrets"
)

type Service struct {
	store    Store
	evidence EvidenceStorer
	purger   EvidencePurger
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func New(store Store, evidence EvidenceStorer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("principal store is required")
	}
	if evidence == nil {
		return nil, errors.New("evidence storer is required")
	}
	s := &Service{
		store:    store,
		evidence: evidence,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a PENDING principal holding freshly stored evidence.
// A known email is rejected before any evidence is written.
func (s *Service) Register(ctx context.Context, cmd models.RegisterCommand) (*models.Principal, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	_, err := s.store.FindByEmail(ctx, cmd.Email)
	switch {
	case err == nil:
		return nil, dErrors.New(dErrors.CodeDuplicateCredential, "credential is already registered")
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, translate(err, "failed to check credential")
	}

	hash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash credential")
	}

	key, err := s.evidence.Store(ctx, cmd.Evidence, cmd.ContentType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	principal := &models.Principal{
		ID:             id.NewPrincipalID(),
		Email:          cmd.Email,
		CredentialHash: hash,
		Status:         models.StatusPending,
		Role:           models.RoleUser,
		EvidenceKey:    key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, principal); err != nil {
		// lost a race on the email, or the insert failed: the stored evidence has no owner
		s.scheduleDeletion(ctx, principal.ID, key)
		return nil, translate(err, "failed to create principal")
	}

	if s.metrics != nil {
		s.metrics.IncRegistration()
	}
	s.emit(ctx, audit.ActionPrincipalRegistered, principal.ID, principal.ID.String(), "")
	return principal, nil
}

// Approve moves a PENDING principal to APPROVED.
func (s *Service) Approve(ctx context.Context, actorID, principalID id.PrincipalID) (*models.Principal, error) {
	return s.adjudicate(ctx, actorID, principalID, models.StatusApproved, audit.ActionPrincipalApproved)
}

// Reject moves a PENDING principal to REJECTED.
func (s *Service) Reject(ctx context.Context, actorID, principalID id.PrincipalID) (*models.Principal, error) {
	return s.adjudicate(ctx, actorID, principalID, models.StatusRejected, audit.ActionPrincipalRejected)
}

// adjudicate runs the single conditional transition out of PENDING. Evidence
// deletion is scheduled afterwards and cannot fail the transition.
func (s *Service) adjudicate(ctx context.Context, actorID, principalID id.PrincipalID, to models.Status, action audit.Action) (*models.Principal, error) {
	if _, err := s.Require(ctx, actorID, access.ActionApproveUser); err != nil {
		return nil, err
	}
	if principalID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "principal id is required")
	}

	updated, err := s.store.TransitionStatus(ctx, principalID, models.StatusPending, to, s.now())
	if err != nil {
		s.countTransition(to, "rejected")
		return nil, translate(err, "failed to update principal status")
	}
	s.countTransition(to, "applied")

	if updated.HasEvidence() {
		s.scheduleDeletion(ctx, updated.ID, updated.EvidenceKey)
	}
	s.emit(ctx, action, updated.ID, actorID.String(), "")
	return updated, nil
}

// SetBanned sets the ban flag on an APPROVED principal. Repeating the current
// value succeeds without a second audit event.
func (s *Service) SetBanned(ctx context.Context, actorID, principalID id.PrincipalID, banned bool) error {
	if _, err := s.Require(ctx, actorID, access.ActionModerate); err != nil {
		return err
	}
	if principalID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "principal id is required")
	}

	changed, err := s.store.SetBanned(ctx, principalID, banned, s.now())
	if err != nil {
		return translate(err, "failed to update ban flag")
	}
	if !changed {
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncBanChange(banned)
	}
	action := audit.ActionPrincipalUnbanned
	if banned {
		action = audit.ActionPrincipalBanned
	}
	s.emit(ctx, action, principalID, actorID.String(), "")
	return nil
}

// Authorize returns the read/write capability of a principal.
func (s *Service) Authorize(ctx context.Context, principalID id.PrincipalID) (models.Authorization, error) {
	p, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		return models.Authorization{}, translate(err, "failed to load principal")
	}
	return access.Authorize(p), nil
}

// Require loads the principal and checks it may perform action. A missing
// principal is reported as PermissionDenied so callers cannot probe for IDs.
func (s *Service) Require(ctx context.Context, principalID id.PrincipalID, action access.Action) (*models.Principal, error) {
	if principalID.IsNil() {
		return nil, permissionDenied()
	}
	p, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, permissionDenied()
		}
		return nil, translate(err, "failed to load principal")
	}
	if !access.CanAccess(p, action) {
		return nil, permissionDenied()
	}
	return p, nil
}

// Lookup returns a principal regardless of status or ban flag.
func (s *Service) Lookup(ctx context.Context, principalID id.PrincipalID) (*models.Principal, error) {
	p, err := s.store.FindByID(ctx, principalID)
	if err != nil {
		return nil, translate(err, "failed to load principal")
	}
	return p, nil
}

// ListPrincipals returns principals newest first for adjudicators.
func (s *Service) ListPrincipals(ctx context.Context, actorID id.PrincipalID, filter models.ListFilter) ([]*models.Principal, error) {
	if _, err := s.Require(ctx, actorID, access.ActionApproveUser); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status filter is invalid")
	}
	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "failed to list principals")
	}
	return list, nil
}

// BootstrapAdmin creates or promotes an approved admin principal. Used by the
// createadmin command. A promoted PENDING principal loses its evidence exactly
// as on approval; a REJECTED one cannot be promoted.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (*models.Principal, error) {
	email = models.NormalizeEmail(email)
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	cmd := models.RegisterCommand{Email: email, Password: password, Evidence: []byte{0}}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash credential")
	}
	now := s.now()
	admin, err := s.store.UpsertAdmin(ctx, &models.Principal{
		ID:             id.NewPrincipalID(),
		Email:          email,
		CredentialHash: hash,
		Status:         models.StatusApproved,
		Role:           models.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, translate(err, "failed to upsert admin")
	}
	if admin.HasEvidence() {
		s.scheduleDeletion(ctx, admin.ID, admin.EvidenceKey)
	}
	s.logger.InfoContext(ctx, "admin bootstrapped", "principal_id", admin.ID)
	return admin, nil
}

func (s *Service) scheduleDeletion(ctx context.Context, principalID id.PrincipalID, key string) {
	if s.purger == nil {
		s.logger.WarnContext(ctx, "no evidence purger configured; evidence retained", "principal_id", principalID)
		return
	}
	if s.metrics != nil {
		s.metrics.IncEvidenceScheduled()
	}
	s.purger.Schedule(ctx, principalID, key)
}

func (s *Service) emit(ctx context.Context, action audit.Action, subject id.PrincipalID, actor, reason string) {
	s.logger.InfoContext(ctx, string(action),
		"principal_id", subject,
		"actor_id", actor,
		"log_type", "audit",
	)
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		SubjectID: subject.String(),
		ActorID:   actor,
		Reason:    reason,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event", "action", action, "error", err)
	}
}

func (s *Service) countTransition(to models.Status, outcome string) {
	if s.metrics != nil {
		s.metrics.IncTransition(string(to), outcome)
	}
}
