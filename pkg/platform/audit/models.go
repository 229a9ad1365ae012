// Package audit records security-relevant actions. Events are append-only.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names an audited transition.
type Action string

const (
	ActionPrincipalRegistered Action = "principal_registered"
	ActionPrincipalApproved   Action = "principal_approved"
	ActionPrincipalRejected   Action = "principal_rejected"
	ActionPrincipalBanned     Action = "principal_banned"
	ActionPrincipalUnbanned   Action = "principal_unbanned"
	ActionContentReported     Action = "content_reported"
	ActionContentRemoved      Action = "content_removed"
	ActionEvidenceDeleted     Action = "evidence_deleted"
	ActionEvidencePurgeFailed Action = "evidence_purge_failed"
)

// Event is one audit record. SubjectID is the principal or content the action
// applies to; ActorID is the admin or system component that performed it.
// Content events never carry the author.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Action    Action    `json:"action"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID string) ([]Event, error)
}

// SystemActor attributes events raised by background workers.
const SystemActor = "system"
