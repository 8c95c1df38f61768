package discharge

import "context"

// StoreInterface defines the contract for the discharge store
type StoreInterface interface {
	FetchActive(ctx context.Context) error
	SetSelected(p *ActivePatient)
	Selected() *ActivePatient
	ProcessDischarge(ctx context.Context, req DischargeRequest) error
	ProcessDischargeByID(ctx context.Context, id int64, req DischargeRequest) error
	ActivePatients() []ActivePatient
	Loading() bool
	LastError() string
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
