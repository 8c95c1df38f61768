package consultation

import "time"

// Consultation represents an inter-department consultation request.
// It stands alone: the MRN is a free-text reference, not a foreign
// key into the patients relation.
type Consultation struct {
	ID                   int64     `json:"id"`
	MRN                  string    `json:"mrn"`
	PatientName          string    `json:"patient_name"`
	Age                  int       `json:"age"`
	Gender               string    `json:"gender"`
	RequestingDepartment string    `json:"requesting_department"`
	PatientLocation      string    `json:"patient_location"`
	Specialty            string    `json:"specialty"`
	ShiftType            string    `json:"shift_type"`
	Urgency              string    `json:"urgency"`
	Reason               string    `json:"reason"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewConsultation represents the request to record a consultation
type NewConsultation struct {
	MRN                  string `json:"mrn"`
	PatientName          string `json:"patient_name"`
	Age                  int    `json:"age"`
	Gender               string `json:"gender"`
	RequestingDepartment string `json:"requesting_department"`
	PatientLocation      string `json:"patient_location"`
	Specialty            string `json:"specialty"`
	ShiftType            string `json:"shift_type"`
	Urgency              string `json:"urgency"`
	Reason               string `json:"reason"`
}

// Validate validates the new consultation request
func (r *NewConsultation) Validate() error {
	if r.MRN == "" {
		return ErrMissingMRN
	}
	if r.Specialty == "" {
		return ErrMissingSpecialty
	}
	return nil
}

// UpdateConsultationRequest represents a partial update
type UpdateConsultationRequest struct {
	PatientLocation string `json:"patient_location,omitempty"`
	Specialty       string `json:"specialty,omitempty"`
	ShiftType       string `json:"shift_type,omitempty"`
	Urgency         string `json:"urgency,omitempty"`
	Reason          string `json:"reason,omitempty"`
}
