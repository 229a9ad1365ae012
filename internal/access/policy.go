// Package access is the single table deciding what a principal may do.
// Every capability check in the core goes through CanAccess.
package access

import "confessional/internal/verification/models"

// Action is an operation a principal attempts.
type Action string

const (
	ActionAuthorContent Action = "author-content"
	ActionReadContent   Action = "read-content"
	ActionReact         Action = "react"
	ActionReportContent Action = "report-content"
	ActionModerate      Action = "moderate"
	ActionApproveUser   Action = "approve-user"
)

// Capability is granted by role.
type Capability string

const (
	CapabilityModerate   Capability = "moderate"
	CapabilityAdjudicate Capability = "adjudicate"
)

// requirement is one row of the policy table. An action either needs an
// approved, unbanned principal or a role capability.
type requirement struct {
	activeMember bool
	capability   Capability
}

var policy = map[Action]requirement{
	ActionAuthorContent: {activeMember: true},
	ActionReadContent:   {activeMember: true},
	ActionReact:         {activeMember: true},
	ActionReportContent: {activeMember: true},
	ActionModerate:      {capability: CapabilityModerate},
	ActionApproveUser:   {capability: CapabilityAdjudicate},
}

var roleCapabilities = map[models.Role][]Capability{
	models.RoleAdmin: {CapabilityModerate, CapabilityAdjudicate},
}

// CanAccess reports whether p may perform action. A nil principal or an
// unknown action is always denied.
func CanAccess(p *models.Principal, action Action) bool {
	if p == nil {
		return false
	}
	req, ok := policy[action]
	if !ok {
		return false
	}
	if req.activeMember && !isActiveMember(p) {
		return false
	}
	if req.capability != "" && !hasCapability(p.Role, req.capability) {
		return false
	}
	return true
}

// Authorize summarizes read and write capability for p.
func Authorize(p *models.Principal) models.Authorization {
	return models.Authorization{
		CanRead:  CanAccess(p, ActionReadContent),
		CanWrite: CanAccess(p, ActionAuthorContent),
	}
}

func isActiveMember(p *models.Principal) bool {
	return p.Status == models.StatusApproved && !p.Banned
}

func hasCapability(role models.Role, c Capability) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == c {
			return true
		}
	}
	return false
}
