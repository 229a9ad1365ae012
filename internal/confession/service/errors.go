package service

import (
	"context"
	"errors"

	"confessional/internal/confession/models"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/sentinel"
)

func translate(err error, action string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return models.ErrNotFound()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTransient, "confession store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
