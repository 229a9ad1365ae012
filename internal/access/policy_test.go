package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"confessional/internal/verification/models"
)

func principal(status models.Status, banned bool, role models.Role) *models.Principal {
	return &models.Principal{Status: status, Banned: banned, Role: role}
}

// TestCanAccess_MemberActions covers every status and ban combination for the
// member actions. Only APPROVED and not banned may proceed.
func TestCanAccess_MemberActions(t *testing.T) {
	memberActions := []Action{ActionAuthorContent, ActionReadContent, ActionReact, ActionReportContent}
	cases := []struct {
		status models.Status
		banned bool
		want   bool
	}{
		{models.StatusPending, false, false},
		{models.StatusPending, true, false},
		{models.StatusApproved, false, true},
		{models.StatusApproved, true, false},
		{models.StatusRejected, false, false},
		{models.StatusRejected, true, false},
	}
	for _, tc := range cases {
		for _, action := range memberActions {
			p := principal(tc.status, tc.banned, models.RoleUser)
			assert.Equal(t, tc.want, CanAccess(p, action), "%s banned=%v %s", tc.status, tc.banned, action)
		}
	}
}

func TestCanAccess_AdminActions(t *testing.T) {
	admin := principal(models.StatusApproved, false, models.RoleAdmin)
	user := principal(models.StatusApproved, false, models.RoleUser)

	for _, action := range []Action{ActionModerate, ActionApproveUser} {
		assert.True(t, CanAccess(admin, action))
		assert.False(t, CanAccess(user, action))
	}
}

func TestCanAccess_DeniesNilAndUnknown(t *testing.T) {
	assert.False(t, CanAccess(nil, ActionReadContent))
	assert.False(t, CanAccess(principal(models.StatusApproved, false, models.RoleAdmin), Action("delete-everything")))
}

func TestAuthorize(t *testing.T) {
	assert.Equal(t, models.Authorization{CanRead: true, CanWrite: true},
		Authorize(principal(models.StatusApproved, false, models.RoleUser)))
	assert.Equal(t, models.Authorization{},
		Authorize(principal(models.StatusApproved, true, models.RoleUser)))
	assert.Equal(t, models.Authorization{},
		Authorize(principal(models.StatusPending, false, models.RoleUser)))
	assert.Equal(t, models.Authorization{}, Authorize(nil))
}
