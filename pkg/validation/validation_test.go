package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confessional/pkg/domain-errors"
)

type reportRequest struct {
	Reason string `json:"reason" validate:"required,notblank,min=10,max=500"`
}

type uploadRequest struct {
	Email       string `validate:"required,email"`
	ContentType string `validate:"imagetype"`
}

func TestValidate(t *testing.T) {
	t.Run("accepts a valid struct", func(t *testing.T) {
		require.NoError(t, Validate(reportRequest{Reason: "this is abusive content"}))
	})

	t.Run("reports missing field by its json name", func(t *testing.T) {
		err := Validate(reportRequest{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "reason is required", err.Error())
	})

	t.Run("blank reason is rejected", func(t *testing.T) {
		err := Validate(reportRequest{Reason: strings.Repeat(" ", 12)})
		assert.Equal(t, "reason must not be blank", err.Error())
	})

	t.Run("length bounds name the unit", func(t *testing.T) {
		err := Validate(reportRequest{Reason: "short"})
		assert.Equal(t, "reason must be at least 10 characters", err.Error())
	})

	t.Run("max counts runes", func(t *testing.T) {
		assert.NoError(t, Validate(reportRequest{Reason: strings.Repeat("ü", 500)}))
		assert.Error(t, Validate(reportRequest{Reason: strings.Repeat("ü", 501)}))
	})

	t.Run("imagetype rejects non-images", func(t *testing.T) {
		err := Validate(uploadRequest{Email: "a@example.com", ContentType: "application/pdf"})
		assert.Equal(t, "content_type must be an image", err.Error(), "untagged fields fall back to snake case")
		assert.NoError(t, Validate(uploadRequest{Email: "a@example.com", ContentType: "image/png"}))
	})
}
