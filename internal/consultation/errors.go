package consultation

import "errors"

var (
	ErrMissingMRN       = errors.New("mrn is required")
	ErrMissingSpecialty = errors.New("consulting specialty is required")
)
