// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "confessional/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing PrincipalID where ConfessionID is expected.
type (
	PrincipalID  uuid.UUID
	ConfessionID uuid.UUID
	ReportID     uuid.UUID
	CommentID    uuid.UUID
	EventID      uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParsePrincipalID(s string) (PrincipalID, error) {
	id, err := parseUUID(s, "principal ID")
	return PrincipalID(id), err
}

func ParseConfessionID(s string) (ConfessionID, error) {
	id, err := parseUUID(s, "confession ID")
	return ConfessionID(id), err
}

func ParseReportID(s string) (ReportID, error) {
	id, err := parseUUID(s, "report ID")
	return ReportID(id), err
}

// New constructors - used by services when creating aggregates.

func NewPrincipalID() PrincipalID   { return PrincipalID(uuid.New()) }
func NewConfessionID() ConfessionID { return ConfessionID(uuid.New()) }
func NewReportID() ReportID         { return ReportID(uuid.New()) }
func NewCommentID() CommentID       { return CommentID(uuid.New()) }
func NewEventID() EventID           { return EventID(uuid.New()) }

// String methods - for logging and debugging.

func (id PrincipalID) String() string  { return uuid.UUID(id).String() }
func (id ConfessionID) String() string { return uuid.UUID(id).String() }
func (id ReportID) String() string     { return uuid.UUID(id).String() }
func (id CommentID) String() string    { return uuid.UUID(id).String() }
func (id EventID) String() string      { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id PrincipalID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ConfessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be nil")
	}
	return id, nil
}
