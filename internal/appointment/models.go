package appointment

import "time"

// Appointment types and statuses
const (
	TypeUrgent  = "urgent"
	TypeRegular = "regular"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment represents a same-day clinic booking
type Appointment struct {
	ID              int64     `json:"id"`
	PatientName     string    `json:"patient_name"`
	MedicalNumber   string    `json:"medical_number"`
	Specialty       string    `json:"specialty"`
	AppointmentType string    `json:"appointment_type"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewAppointment represents the booking form fields. Status and
// created_at are never taken from the caller.
type NewAppointment struct {
	PatientName     string `json:"patient_name"`
	MedicalNumber   string `json:"medical_number"`
	Specialty       string `json:"specialty"`
	AppointmentType string `json:"appointment_type"`
	Notes           string `json:"notes,omitempty"`
}

// Validate validates the booking request
func (r *NewAppointment) Validate() error {
	if r.PatientName == "" {
		return ErrMissingPatientName
	}
	if r.MedicalNumber == "" {
		return ErrMissingMedicalNumber
	}
	if r.Specialty == "" {
		return ErrMissingSpecialty
	}
	return nil
}

// appointmentInsert is the payload sent to the appointments relation.
type appointmentInsert struct {
	NewAppointment
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateAppointmentRequest represents a partial update
type UpdateAppointmentRequest struct {
	Specialty       string `json:"specialty,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status,omitempty"`
}

// SweepResult reports the outcome of an expiry sweep so callers can
// log it or feed it into metrics instead of the failure being
// silently swallowed.
type SweepResult struct {
	CutOff     time.Time
	DeleteErr  error
	RefreshErr error
}

// Failed reports whether any part of the sweep went wrong.
func (r SweepResult) Failed() bool {
	return r.DeleteErr != nil || r.RefreshErr != nil
}
