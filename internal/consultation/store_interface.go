package consultation

import "context"

// StoreInterface defines the contract for the consultation store
type StoreInterface interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, req NewConsultation) (*Consultation, error)
	Update(ctx context.Context, id int64, req UpdateConsultationRequest) (*Consultation, error)
	Delete(ctx context.Context, id int64) error
	Select(c *Consultation)
	Selected() *Consultation
	Consultations() []Consultation
	Loading() bool
	LastError() string
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
