package discharge

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
)

const (
	relationActive     = "active_admissions"
	relationAdmissions = "admissions"

	statusActive     = "active"
	statusDischarged = "discharged"
)

// Store caches the ActivePatient projections and runs the discharge
// workflow. A discharge updates the admission row to its terminal
// state and then re-fetches the active list rather than removing the
// row locally: the cache always reflects exactly what the backend
// still considers active, at the cost of a second round trip.
type Store struct {
	gw        gateway.Gateway
	publisher messaging.PublisherInterface
	now       func() time.Time

	mu         sync.Mutex
	active     []ActivePatient
	loading    bool
	lastErr    string
	selectedID *int64
}

// NewStore creates a discharge store backed by the given gateway.
func NewStore(gw gateway.Gateway, publisher messaging.PublisherInterface) *Store {
	return &Store{gw: gw, publisher: publisher, now: time.Now}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.loading = false
	s.lastErr = err.Error()
	s.mu.Unlock()
	return err
}

// FetchActive replaces the cache with every admission the backend
// still reports as active.
func (s *Store) FetchActive(ctx context.Context) error {
	s.begin()

	var rows []ActivePatient
	err := s.gw.Select(ctx, relationActive, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("status", statusActive)},
	}, &rows)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch active patients: %w", err))
	}

	s.mu.Lock()
	s.active = rows
	s.loading = false
	s.mu.Unlock()
	return nil
}

// SetSelected sets the patient being discharged. Nil clears it.
// No network call.
func (s *Store) SetSelected(p *ActivePatient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.selectedID = nil
		return
	}
	id := p.ID
	s.selectedID = &id
}

// Selected resolves the selection against the cache.
func (s *Store) Selected() *ActivePatient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	for i := range s.active {
		if s.active[i].ID == *s.selectedID {
			p := s.active[i]
			return &p
		}
	}
	return nil
}

// ProcessDischarge moves the selected patient's admission to its
// terminal state. On success the active list is re-fetched and the
// selection cleared; on failure the selection is preserved and the
// error recorded so the caller may retry.
func (s *Store) ProcessDischarge(ctx context.Context, req DischargeRequest) error {
	selected := s.Selected()
	if selected == nil {
		return s.fail(ErrNoPatientSelected)
	}

	return s.discharge(ctx, *selected, req)
}

// ProcessDischargeByID discharges one specific admission. The shared
// selection slot is never consulted, so concurrent callers cannot
// redirect each other's discharge between resolve and update.
func (s *Store) ProcessDischargeByID(ctx context.Context, id int64, req DischargeRequest) error {
	s.mu.Lock()
	var target *ActivePatient
	for i := range s.active {
		if s.active[i].ID == id {
			p := s.active[i]
			target = &p
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return s.fail(ErrAdmissionNotActive)
	}
	return s.discharge(ctx, *target, req)
}

func (s *Store) discharge(ctx context.Context, selected ActivePatient, req DischargeRequest) error {
	s.begin()

	dischargedAt := s.now().UTC()
	update := dischargeUpdate{
		DischargeRequest: req,
		DischargeDate:    dischargedAt,
		Status:           statusDischarged,
	}

	err := s.gw.Update(ctx, relationAdmissions, update,
		[]gateway.Filter{gateway.Eq("id", selected.ID)}, nil)
	if err != nil {
		return s.fail(fmt.Errorf("failed to process discharge: %w", err))
	}

	if s.publisher != nil {
		event := messaging.PatientDischargedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDischarged),
			Data: messaging.PatientDischargedData{
				AdmissionID:   selected.ID,
				PatientID:     selected.PatientID,
				MRN:           selected.MRN,
				Department:    selected.Department,
				DischargeType: req.DischargeType,
				DischargedAt:  dischargedAt,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventPatientDischarged, event); err != nil {
			log.Printf("Warning: failed to publish patient.discharged event: %v", err)
		}
	}

	// The admission is discharged whatever happens next, so a
	// selection pointing at it is cleared even if the refresh fails.
	// Another caller's unrelated selection is left alone.
	fetchErr := s.FetchActive(ctx)

	s.mu.Lock()
	if s.selectedID != nil && *s.selectedID == selected.ID {
		s.selectedID = nil
	}
	s.mu.Unlock()

	if fetchErr != nil {
		return fetchErr
	}
	return nil
}

// ActivePatients returns a snapshot of the cached projections.
func (s *Store) ActivePatients() []ActivePatient {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]ActivePatient, len(s.active))
	copy(snapshot, s.active)
	return snapshot
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent failure message, or "".
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
