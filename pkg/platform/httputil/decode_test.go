package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "confessional/pkg/domain-errors"
)

type taggedRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

type validatingRequest struct {
	Name string `json:"name"`
}

func (r *validatingRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type sanitizingRequest struct {
	Name      string `json:"name" validate:"required"`
	sanitized bool
}

func (r *sanitizingRequest) Sanitize() {
	r.sanitized = true
}

type domainErrorRequest struct {
	ID string `json:"id"`
}

func (r *domainErrorRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("invalid JSON returns bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[taggedRequest](w, req, logger)

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})

	t.Run("empty body returns bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[taggedRequest](w, req, logger)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("struct tags are enforced when no Validate method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"reason":"short"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[taggedRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_failed", resp.Error)
		assert.Equal(t, "reason must be at least 10 characters", resp.ErrorDescription)
	})

	t.Run("plain Validate error becomes validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[validatingRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, "validation_failed", decodeError(t, w).Error)
	})

	t.Run("domain error code from Validate is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[domainErrorRequest](w, req, logger)

		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, "bad_request", resp.Error)
		assert.Contains(t, resp.ErrorDescription, "id is required")
	})

	t.Run("sanitize runs before tag validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"ok"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[sanitizingRequest](w, req, logger)

		require.True(t, ok)
		assert.True(t, result.sanitized)
	})
}
