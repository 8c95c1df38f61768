package discharge

import "time"

// ActivePatient is the read-optimized projection served by the
// active_admissions view: one row per admission still in the ward,
// already joined with the patient and the assigned doctor. It is
// derived, never authored; id is the admission id.
type ActivePatient struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	MRN           string    `json:"mrn"`
	Name          string    `json:"name"`
	AdmissionDate time.Time `json:"admission_date"`
	Department    string    `json:"department"`
	DoctorName    string    `json:"doctor_name"`
	Diagnosis     string    `json:"diagnosis"`
	Status        string    `json:"status"`
}

// DischargeRequest carries the caller-supplied discharge details.
// The discharge date and terminal status are set by the store, not
// the caller.
type DischargeRequest struct {
	DischargeType string `json:"discharge_type,omitempty"`
	Medications   string `json:"medications,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	FollowUp      string `json:"follow_up,omitempty"`
}

// dischargeUpdate is the payload sent to the admissions relation.
type dischargeUpdate struct {
	DischargeRequest
	DischargeDate time.Time `json:"discharge_date"`
	Status        string    `json:"status"`
}
