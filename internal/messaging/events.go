package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys as constants
const (
	// Staff events
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"

	// Patient lifecycle events
	EventPatientAdmitted   = "patient.admitted"
	EventPatientDischarged = "patient.discharged"

	// Appointment events
	EventAppointmentCreated = "appointment.created"
	EventAppointmentSweep   = "appointment.sweep"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// NewBaseEvent creates a BaseEvent with a fresh id and timestamp
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		ServiceName: "department-service",
	}
}

// UserCreatedEvent represents a staff user creation event
type UserCreatedEvent struct {
	BaseEvent
	Data UserCreatedData `json:"data"`
}

type UserCreatedData struct {
	UserID      int64     `json:"user_id"`
	MedicalCode string    `json:"medical_code"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Department  string    `json:"department"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserDeletedEvent represents a staff user deletion event
type UserDeletedEvent struct {
	BaseEvent
	Data UserDeletedData `json:"data"`
}

type UserDeletedData struct {
	UserID    int64     `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// PatientAdmittedEvent represents a new admission
type PatientAdmittedEvent struct {
	BaseEvent
	Data PatientAdmittedData `json:"data"`
}

type PatientAdmittedData struct {
	PatientID        int64     `json:"patient_id"`
	AdmissionID      int64     `json:"admission_id"`
	MRN              string    `json:"mrn"`
	Name             string    `json:"name"`
	Department       string    `json:"department"`
	Diagnosis        string    `json:"diagnosis"`
	AssignedDoctorID int64     `json:"assigned_doctor_id"`
	AdmissionDate    time.Time `json:"admission_date"`
}

// PatientDischargedEvent represents a completed discharge
type PatientDischargedEvent struct {
	BaseEvent
	Data PatientDischargedData `json:"data"`
}

type PatientDischargedData struct {
	AdmissionID   int64     `json:"admission_id"`
	PatientID     int64     `json:"patient_id"`
	MRN           string    `json:"mrn"`
	Department    string    `json:"department"`
	DischargeType string    `json:"discharge_type"`
	DischargedAt  time.Time `json:"discharged_at"`
}

// AppointmentCreatedEvent represents a new appointment booking
type AppointmentCreatedEvent struct {
	BaseEvent
	Data AppointmentCreatedData `json:"data"`
}

type AppointmentCreatedData struct {
	AppointmentID   int64     `json:"appointment_id"`
	PatientName     string    `json:"patient_name"`
	MedicalNumber   string    `json:"medical_number"`
	Specialty       string    `json:"specialty"`
	AppointmentType string    `json:"appointment_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppointmentSweepEvent reports the outcome of an expiry sweep so
// operators can monitor sweep health
type AppointmentSweepEvent struct {
	BaseEvent
	Data AppointmentSweepData `json:"data"`
}

type AppointmentSweepData struct {
	CutOff    time.Time `json:"cut_off"`
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error,omitempty"`
}
