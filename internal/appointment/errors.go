package appointment

import "errors"

var (
	ErrMissingPatientName   = errors.New("patient name is required")
	ErrMissingMedicalNumber = errors.New("medical number is required")
	ErrMissingSpecialty     = errors.New("specialty is required")
)
