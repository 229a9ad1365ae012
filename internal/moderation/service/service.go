// Package service handles reports, removals and bans. The author of a
// confession is resolved internally and never returned.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"confessional/internal/access"
	cmodels "confessional/internal/confession/models"
	"confessional/internal/moderation/metrics"
	"confessional/internal/moderation/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	audit "confessional/pkg/platform/audit"
	"confessional/pkg/platform/paging"
	"confessional/pkg/platform/sentinel"
	"confessional/pkg/platform/validation"
)

type Service struct {
	reports  ReportStore
	verifier Verifier
	content  Content
	tokens   Tokenizer
	evidence EvidenceLocator
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func New(reports ReportStore, verifier Verifier, content Content, tokens Tokenizer, opts ...Option) (*Service, error) {
	if reports == nil {
		return nil, errors.New("report store is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if content == nil {
		return nil, errors.New("content service is required")
	}
	if tokens == nil {
		return nil, errors.New("tokenizer is required")
	}
	s := &Service{
		reports:  reports,
		verifier: verifier,
		content:  content,
		tokens:   tokens,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Report files a report against live content. Duplicate reports are kept.
func (s *Service) Report(ctx context.Context, contentID id.ConfessionID, reporterID id.PrincipalID, reason string) (*models.Report, error) {
	if _, err := s.verifier.Require(ctx, reporterID, access.ActionReportContent); err != nil {
		return nil, err
	}
	reason, err := models.NormalizeReason(reason)
	if err != nil {
		return nil, err
	}
	if _, err := s.liveContent(ctx, contentID); err != nil {
		return nil, err
	}

	token := s.tokens.Token(reporterID)
	report := &models.Report{
		ID:            id.NewReportID(),
		ConfessionID:  contentID,
		ReporterToken: token,
		Reason:        reason,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, translate(err, "failed to file report")
	}

	if s.metrics != nil {
		s.metrics.IncReport()
	}
	s.emit(ctx, audit.ActionContentReported, contentID.String(), token.String(), reason)
	return report, nil
}

// RemoveContent soft-removes an item. Removing it again succeeds with no
// further side effect.
func (s *Service) RemoveContent(ctx context.Context, contentID id.ConfessionID, actorID id.PrincipalID) error {
	if _, err := s.verifier.Require(ctx, actorID, access.ActionModerate); err != nil {
		return err
	}
	if contentID.IsNil() {
		return cmodels.ErrNotFound()
	}
	changed, err := s.content.MarkRemoved(ctx, contentID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncRemoval()
	}
	s.emit(ctx, audit.ActionContentRemoved, contentID.String(), actorID.String(), "")
	return nil
}

// ListReports pages through reports newest first, each joined with a summary
// of the reported item.
func (s *Service) ListReports(ctx context.Context, actorID id.PrincipalID, req paging.Request) (paging.Page[models.ReportView], error) {
	var empty paging.Page[models.ReportView]
	if _, err := s.verifier.Require(ctx, actorID, access.ActionModerate); err != nil {
		return empty, err
	}
	after, err := paging.Decode(req.Cursor)
	if err != nil {
		return empty, err
	}
	limit := validation.ClampPageSize(req.Limit, validation.DefaultReportPageSize, validation.MaxReportPageSize)

	reports, err := s.reports.List(ctx, after, limit+1)
	if err != nil {
		return empty, translate(err, "failed to list reports")
	}
	page := paging.Build(reports, limit, func(r *models.Report) paging.Cursor {
		return paging.Cursor{At: r.CreatedAt, ID: uuid.UUID(r.ID)}
	})

	ids := make([]id.ConfessionID, 0, len(page.Items))
	seen := make(map[id.ConfessionID]struct{}, len(page.Items))
	for _, r := range page.Items {
		if _, ok := seen[r.ConfessionID]; !ok {
			seen[r.ConfessionID] = struct{}{}
			ids = append(ids, r.ConfessionID)
		}
	}
	summaries, err := s.content.Summaries(ctx, ids)
	if err != nil {
		return empty, err
	}

	out := paging.Page[models.ReportView]{Items: make([]models.ReportView, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, r := range page.Items {
		var summary *cmodels.Summary
		if found, ok := summaries[r.ConfessionID]; ok {
			summary = &found
		}
		out.Items = append(out.Items, models.NewReportView(r, summary))
	}
	return out, nil
}

// ListPendingPrincipals lists principals for adjudication, newest first. A nil
// status lists every principal.
func (s *Service) ListPendingPrincipals(ctx context.Context, actorID id.PrincipalID, status *vmodels.Status) ([]models.PrincipalSummary, error) {
	principals, err := s.verifier.ListPrincipals(ctx, actorID, vmodels.ListFilter{Status: status})
	if err != nil {
		return nil, err
	}
	authors := make([]id.PrincipalID, 0, len(principals))
	for _, p := range principals {
		authors = append(authors, p.ID)
	}
	counts, err := s.content.CountByAuthors(ctx, authors)
	if err != nil {
		return nil, err
	}

	out := make([]models.PrincipalSummary, 0, len(principals))
	for _, p := range principals {
		summary := models.PrincipalSummary{
			ID:              p.ID.String(),
			Email:           p.Email,
			Status:          p.Status,
			Banned:          p.Banned,
			Role:            p.Role,
			ConfessionCount: counts[p.ID],
			CreatedAt:       p.CreatedAt,
		}
		if p.HasEvidence() && s.evidence != nil {
			summary.EvidenceURL = s.evidence.URLFor(p.EvidenceKey)
		}
		out = append(out, summary)
	}
	return out, nil
}

// BanAuthor bans whoever wrote contentID. The author is looked up here and
// not exposed to the caller.
func (s *Service) BanAuthor(ctx context.Context, contentID id.ConfessionID, actorID id.PrincipalID) error {
	if _, err := s.verifier.Require(ctx, actorID, access.ActionModerate); err != nil {
		return err
	}
	if contentID.IsNil() {
		return cmodels.ErrNotFound()
	}
	c, err := s.content.GetForAudit(ctx, contentID)
	if err != nil {
		return err
	}
	if err := s.verifier.SetBanned(ctx, actorID, c.AuthorID, true); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncBan()
	}
	s.logger.InfoContext(ctx, "author banned from content", "confession_id", contentID, "actor_id", actorID)
	return nil
}

func (s *Service) liveContent(ctx context.Context, contentID id.ConfessionID) (*cmodels.Confession, error) {
	if contentID.IsNil() {
		return nil, cmodels.ErrNotFound()
	}
	c, err := s.content.GetForAudit(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if c.Removed {
		return nil, cmodels.ErrNotFound()
	}
	return c, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, subject, actor, reason string) {
	s.logger.InfoContext(ctx, string(action),
		"subject_id", subject,
		"log_type", "audit",
	)
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		SubjectID: subject,
		ActorID:   actor,
		Reason:    reason,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event", "action", action, "error", err)
	}
}

func translate(err error, action string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return cmodels.ErrNotFound()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTransient, "report store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
