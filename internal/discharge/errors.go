package discharge

import "errors"

var (
	ErrNoPatientSelected  = errors.New("no patient selected for discharge")
	ErrAdmissionNotActive = errors.New("admission not in active set")
)
