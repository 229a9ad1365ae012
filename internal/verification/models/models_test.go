package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confessional/pkg/domain-errors"
)

func TestStatus(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())

	s, err := ParseStatus(" pending ")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	_, err = ParseStatus("BANNED")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRegisterCommandValidate(t *testing.T) {
	valid := func() RegisterCommand {
		return RegisterCommand{Email: "  Alice@Example.COM ", Password: "long-enough", Evidence: []byte{1}}
	}

	t.Run("normalizes email", func(t *testing.T) {
		cmd := valid()
		cmd.Normalize()
		assert.Equal(t, "alice@example.com", cmd.Email)
		assert.NoError(t, cmd.Validate())
	})

	cases := map[string]func(*RegisterCommand){
		"missing email":     func(c *RegisterCommand) { c.Email = "" },
		"malformed email":   func(c *RegisterCommand) { c.Email = "not-an-email" },
		"display name form": func(c *RegisterCommand) { c.Email = "Alice <alice@example.com>" },
		"short password":    func(c *RegisterCommand) { c.Password = "short" },
		"long password":     func(c *RegisterCommand) { c.Password = strings.Repeat("p", 73) },
		"missing evidence":  func(c *RegisterCommand) { c.Evidence = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cmd := valid()
			cmd.Normalize()
			mutate(&cmd)
			err := cmd.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
