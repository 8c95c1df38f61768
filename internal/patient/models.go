package patient

import "time"

// Admission statuses
const (
	StatusActive      = "active"
	StatusDischarged  = "discharged"
	StatusTransferred = "transferred"
)

// Patient represents a patient row plus the fields derived from its
// latest admission. The derived fields (doctor_name, department,
// diagnosis, admission_date) are never persisted: they are recomputed
// on every fetch and owned by this store alone.
type Patient struct {
	ID        int64     `json:"id"`
	MRN       string    `json:"mrn"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived from the latest admission
	DoctorName    string     `json:"doctor_name,omitempty"`
	Department    string     `json:"department,omitempty"`
	Diagnosis     string     `json:"diagnosis,omitempty"`
	AdmissionDate *time.Time `json:"admission_date,omitempty"`
}

// clone copies the row, detaching the admission date pointer so a
// snapshot cannot reach back into the cache.
func (p Patient) clone() Patient {
	if p.AdmissionDate != nil {
		d := *p.AdmissionDate
		p.AdmissionDate = &d
	}
	return p
}

// Admission represents one hospital admission of a patient
type Admission struct {
	ID               int64      `json:"id"`
	PatientID        int64      `json:"patient_id"`
	AdmissionDate    time.Time  `json:"admission_date"`
	Department       string     `json:"department"`
	Diagnosis        string     `json:"diagnosis"`
	AssignedDoctorID int64      `json:"assigned_doctor_id"`
	ShiftType        string     `json:"shift_type,omitempty"`
	WeekendShift     bool       `json:"weekend_shift,omitempty"`
	Status           string     `json:"status"`
	DischargeDate    *time.Time `json:"discharge_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewPatient represents the request to register a patient
type NewPatient struct {
	MRN    string `json:"mrn"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// Validate validates the new patient request
func (r *NewPatient) Validate() error {
	if r.MRN == "" {
		return ErrMissingMRN
	}
	if r.Name == "" {
		return ErrMissingName
	}
	return nil
}

// NewAdmission represents the admission details captured on the
// admission form
type NewAdmission struct {
	AdmissionDate    time.Time `json:"admission_date"`
	Department       string    `json:"department"`
	Diagnosis        string    `json:"diagnosis"`
	AssignedDoctorID int64     `json:"assigned_doctor_id"`
	ShiftType        string    `json:"shift_type,omitempty"`
	WeekendShift     bool      `json:"weekend_shift,omitempty"`
}

// admissionInsert is the payload actually sent to the admissions
// relation: the form fields plus the owning patient and the initial
// status.
type admissionInsert struct {
	NewAdmission
	PatientID int64  `json:"patient_id"`
	Status    string `json:"status"`
}

// UpdatePatientRequest represents a partial update of a patient's
// demographic fields
type UpdatePatientRequest struct {
	MRN    string `json:"mrn,omitempty"`
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}
