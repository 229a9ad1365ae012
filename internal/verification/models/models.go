package models

import (
	"net/mail"
	"strings"
	"time"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/validation"
)

// Status is the verification state of a principal.
// PENDING moves to APPROVED or REJECTED exactly once.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus accepts the upper-case wire form.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of PENDING, APPROVED, REJECTED")
	}
	return s, nil
}

// Role grants capabilities through the access policy.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is a registrant. Email and CredentialHash never leave the
// verification and moderation boundaries.
type Principal struct {
	ID             id.PrincipalID
	Email          string
	CredentialHash string
	Status         Status
	Banned         bool
	Role           Role
	EvidenceKey    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasEvidence reports whether identity evidence is still held for this principal.
func (p *Principal) HasEvidence() bool {
	return p.EvidenceKey != ""
}

// Authorization is the capability summary derived from the access policy.
type Authorization struct {
	CanRead  bool `json:"can_read"`
	CanWrite bool `json:"can_write"`
}

// RegisterCommand carries a registration request into the service.
type RegisterCommand struct {
	Email       string
	Password    string
	Evidence    []byte
	ContentType string
}

// Normalize lower-cases and trims the credential identifier.
func (c *RegisterCommand) Normalize() {
	c.Email = NormalizeEmail(c.Email)
}

// Validate checks the credential fields. Evidence bytes are checked by the
// evidence adapter so type and size errors keep their own codes.
func (c *RegisterCommand) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if len(c.Password) < validation.MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password is too short")
	}
	if len(c.Password) > validation.MaxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password is too long")
	}
	if len(c.Evidence) == 0 {
		return dErrors.New(dErrors.CodeValidation, "evidence is required")
	}
	return nil
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized email.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if err := validation.CheckStringLength("email", email, validation.MaxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid email")
	}
	return nil
}

// ListFilter narrows ListPrincipals. A nil Status lists every principal.
type ListFilter struct {
	Status *Status
}
