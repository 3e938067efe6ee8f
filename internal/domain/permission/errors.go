package permission

import (
	"errors"
	"fmt"
)

var (
	ErrGroupNotFound    = errors.New("permission group not found")
	ErrGroupNameExists  = errors.New("a permission group with this name already exists")
	ErrInvalidGroupName = errors.New("permission group name must be between 1 and 100 characters")
	ErrPermissionDenied = errors.New("permission denied")
)

// UnknownPermissionError names the permission id that is not in the catalog.
type UnknownPermissionError struct {
	ID string
}

func (e *UnknownPermissionError) Error() string {
	return fmt.Sprintf("unknown permission: %q", e.ID)
}
