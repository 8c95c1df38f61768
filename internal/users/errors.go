package users

import "errors"

var (
	ErrMissingMedicalCode = errors.New("medical code is required")
	ErrMissingName        = errors.New("name is required")
	ErrMissingDepartment  = errors.New("department is required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("User not found")
)
