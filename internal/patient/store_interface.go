package patient

import "context"

// StoreInterface defines the contract for the patient store
type StoreInterface interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, req NewPatient) (*Patient, error)
	Admit(ctx context.Context, req NewPatient, adm NewAdmission) (*Patient, error)
	Update(ctx context.Context, id int64, req UpdatePatientRequest) (*Patient, error)
	Delete(ctx context.Context, id int64) error
	Select(p *Patient)
	Selected() *Patient
	Patients() []Patient
	Loading() bool
	LastError() string
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
