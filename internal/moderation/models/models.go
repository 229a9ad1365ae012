package models

import (
	"time"

	cmodels "confessional/internal/confession/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/platform/validation"
	strutil "confessional/pkg/string"
)

// Report flags a confession for review. It never implies removal and carries
// the reporter's ActionToken instead of a principal ID.
type Report struct {
	ID            id.ReportID
	ConfessionID  id.ConfessionID
	ReporterToken privacy.ActionToken
	Reason        string
	CreatedAt     time.Time
}

// NormalizeReason sanitizes and validates a report reason.
func NormalizeReason(reason string) (string, error) {
	reason = strutil.StripControl(reason)
	if err := validation.CheckRuneLength("reason", reason, validation.MinReportReasonLength, validation.MaxReportReasonLength); err != nil {
		return "", err
	}
	return reason, nil
}

// ReportView is a report joined with a summary of the reported item.
// Content is nil when the item no longer exists.
type ReportView struct {
	ID           string           `json:"id"`
	ConfessionID string           `json:"confession_id"`
	Reason       string           `json:"reason"`
	CreatedAt    time.Time        `json:"created_at"`
	Content      *cmodels.Summary `json:"content,omitempty"`
}

func NewReportView(r *Report, summary *cmodels.Summary) ReportView {
	return ReportView{
		ID:           r.ID.String(),
		ConfessionID: r.ConfessionID.String(),
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
		Content:      summary,
	}
}

// PrincipalSummary is the adjudication queue entry shown to admins.
type PrincipalSummary struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	Status          vmodels.Status `json:"status"`
	Banned          bool           `json:"banned"`
	Role            vmodels.Role   `json:"role"`
	EvidenceURL     string         `json:"evidence_url,omitempty"`
	ConfessionCount int            `json:"confession_count"`
	CreatedAt       time.Time      `json:"created_at"`
}
