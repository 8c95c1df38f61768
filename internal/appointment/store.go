package appointment

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
)

const relation = "appointments"

// ExpiryWindow is how long a booking stays live. Anything older is
// excluded from every read and eventually purged by the sweep.
const ExpiryWindow = 24 * time.Hour

// Store caches same-day appointment bookings. Reads are live-window
// reads: Fetch only requests rows younger than ExpiryWindow, so an
// aged-out row is invisible even while it still physically exists
// remotely. Sweep is the separate best-effort pass that actually
// deletes the stale rows.
type Store struct {
	gw        gateway.Gateway
	publisher messaging.PublisherInterface
	now       func() time.Time

	mu           sync.Mutex
	appointments []Appointment
	loading      bool
	lastErr      string
}

// NewStore creates an appointment store backed by the given gateway.
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

// cutoff is the oldest created_at still considered live.
func (s *Store) cutoff() time.Time {
	return s.now().UTC().Add(-ExpiryWindow)
}

// Fetch replaces the cache with the bookings of the last 24 hours,
// most recent first.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	var rows []Appointment
	err := s.gw.Select(ctx, relation, gateway.Query{
		Filters: []gateway.Filter{gateway.Gt("created_at", s.cutoff())},
		Order:   &gateway.Order{Column: "created_at", Descending: true},
	}, &rows)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch appointments: %w", err))
	}

	s.mu.Lock()
	s.appointments = rows
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Add books an appointment. Status is always pending and created_at
// is stamped here, whatever the caller supplied.
func (s *Store) Add(ctx context.Context, req NewAppointment) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.begin()

	insert := appointmentInsert{
		NewAppointment: req,
		Status:         StatusPending,
		CreatedAt:      s.now().UTC(),
	}

	var created Appointment
	if err := s.gw.Insert(ctx, relation, insert, &created); err != nil {
		return nil, s.fail(fmt.Errorf("failed to add appointment: %w", err))
	}

	s.mu.Lock()
	s.appointments = append([]Appointment{created}, s.appointments...)
	s.loading = false
	s.mu.Unlock()

	if s.publisher != nil {
		event := messaging.AppointmentCreatedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentCreated),
			Data: messaging.AppointmentCreatedData{
				AppointmentID:   created.ID,
				PatientName:     created.PatientName,
				MedicalNumber:   created.MedicalNumber,
				Specialty:       created.Specialty,
				AppointmentType: created.AppointmentType,
				CreatedAt:       created.CreatedAt,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventAppointmentCreated, event); err != nil {
			log.Printf("Warning: failed to publish appointment.created event: %v", err)
		}
	}

	return &created, nil
}

// Update sends a partial update and replaces the cached row with the
// row the backend returns.
func (s *Store) Update(ctx context.Context, id int64, req UpdateAppointmentRequest) (*Appointment, error) {
	s.begin()

	var updated Appointment
	err := s.gw.Update(ctx, relation, req, []gateway.Filter{gateway.Eq("id", id)}, &updated)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to update appointment: %w", err))
	}

	s.mu.Lock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i] = updated
			break
		}
	}
	s.loading = false
	s.mu.Unlock()

	return &updated, nil
}

// Sweep deletes every booking older than the expiry window and then
// refreshes the cache. It is best-effort housekeeping: failures are
// logged and reported in the result (and to the event bus), but never
// recorded in the store's error slot.
func (s *Store) Sweep(ctx context.Context) SweepResult {
	result := SweepResult{CutOff: s.cutoff()}

	err := s.gw.Delete(ctx, relation, []gateway.Filter{
		gateway.Lt("created_at", result.CutOff),
	})
	if err != nil {
		result.DeleteErr = err
		log.Printf("Error removing expired appointments: %v", err)
	} else if fetchErr := s.Fetch(ctx); fetchErr != nil {
		result.RefreshErr = fetchErr
	}

	if s.publisher != nil {
		data := messaging.AppointmentSweepData{
			CutOff:    result.CutOff,
			Succeeded: !result.Failed(),
		}
		if result.DeleteErr != nil {
			data.Error = result.DeleteErr.Error()
		} else if result.RefreshErr != nil {
			data.Error = result.RefreshErr.Error()
		}
		event := messaging.AppointmentSweepEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentSweep),
			Data:      data,
		}
		if err := s.publisher.Publish(ctx, messaging.EventAppointmentSweep, event); err != nil {
			log.Printf("Warning: failed to publish appointment.sweep event: %v", err)
		}
	}

	return result
}

// Appointments returns a snapshot of the cached rows.
func (s *Store) Appointments() []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Appointment, len(s.appointments))
	copy(snapshot, s.appointments)
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
