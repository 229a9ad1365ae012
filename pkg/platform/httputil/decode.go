package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/requestcontext"
	"confessional/pkg/validation"
)

// DecodeJSON decodes a JSON request body into the target type.
// On failure it writes a 400 response and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// Validatable is implemented by request types with checks beyond struct tags.
type Validatable interface {
	Validate() error
}

// Sanitizable is implemented by request types that clean user input before validation.
type Sanitizable interface {
	Sanitize()
}

// PrepareRequest sanitizes then validates a request. Types without a Validate
// method are checked against their `validate` struct tags.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return validation.Validate(req)
}

// DecodeAndPrepare combines JSON decoding with request preparation.
//
//	req, ok := httputil.DecodeAndPrepare[reportRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(r.Context(), "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
		}
		return nil, false
	}

	return req, true
}
