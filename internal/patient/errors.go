package patient

import "errors"

var (
	ErrMissingMRN  = errors.New("mrn is required")
	ErrMissingName = errors.New("patient name is required")
)
