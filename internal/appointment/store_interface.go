package appointment

import "context"

// StoreInterface defines the contract for the appointment store
type StoreInterface interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, req NewAppointment) (*Appointment, error)
	Update(ctx context.Context, id int64, req UpdateAppointmentRequest) (*Appointment, error)
	Sweep(ctx context.Context) SweepResult
	Appointments() []Appointment
	Loading() bool
	LastError() string
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
