package service

import (
	"context"
	"errors"

	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/sentinel"
)

// translate maps a store error to a domain error. Errors that already carry a
// domain code pass through unchanged.
func translate(err error, action string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "principal not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidTransition, "principal is not in a state that allows this change")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeDuplicateCredential, "credential is already registered")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTransient, "verification store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}

func permissionDenied() error {
	return dErrors.New(dErrors.CodePermissionDenied, "permission denied")
}
