package usecases

import (
	"errors"

	"github.com/connecthub/connecthub/internal/domain/workflow"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

func mapError(err error) error {
	var invalid *workflow.ValidationError
	switch {
	case errors.As(err, &invalid):
		details := make([]string, 0, len(invalid.Issues))
		for _, i := range invalid.Issues {
			details = append(details, i.Code+": "+i.Message)
		}
		return apperrors.NewValidationError(workflow.ErrInvalidGraph.Error(), details...)
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, workflow.ErrVersionConflict),
		errors.Is(err, workflow.ErrArchived),
		errors.Is(err, workflow.ErrAlreadyArchived):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, workflow.ErrInvalidName),
		errors.Is(err, workflow.ErrInvalidGraph),
		errors.Is(err, workflow.ErrUnsupportedDocument):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}
