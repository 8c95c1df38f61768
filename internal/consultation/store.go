package consultation

import (
	"context"
	"fmt"
	"sync"

	"github.com/clinicore/department-service/internal/gateway"
)

const relation = "consultations"

// Store caches consultation requests. Same contract as the other
// entity stores: the cache changes only after the gateway confirms,
// failures keep last-known-good rows and record the error.
type Store struct {
	gw gateway.Gateway

	mu            sync.Mutex
	consultations []Consultation
	loading       bool
	lastErr       string
	selectedID    *int64
}

// NewStore creates a consultation store backed by the given gateway.
func NewStore(gw gateway.Gateway) *Store {
	return &Store{gw: gw}
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

// Fetch replaces the cache with all consultations ordered by recency.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	var rows []Consultation
	err := s.gw.Select(ctx, relation, gateway.Query{
		Order: &gateway.Order{Column: "created_at", Descending: true},
	}, &rows)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch consultations: %w", err))
	}

	s.mu.Lock()
	s.consultations = rows
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Add records a consultation and prepends the returned row.
func (s *Store) Add(ctx context.Context, req NewConsultation) (*Consultation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.begin()

	var created Consultation
	if err := s.gw.Insert(ctx, relation, req, &created); err != nil {
		return nil, s.fail(fmt.Errorf("failed to add consultation: %w", err))
	}

	s.mu.Lock()
	s.consultations = append([]Consultation{created}, s.consultations...)
	s.loading = false
	s.mu.Unlock()

	return &created, nil
}

// Update sends a partial update and replaces the cached row with the
// row the backend returns.
func (s *Store) Update(ctx context.Context, id int64, req UpdateConsultationRequest) (*Consultation, error) {
	s.begin()

	var updated Consultation
	err := s.gw.Update(ctx, relation, req, []gateway.Filter{gateway.Eq("id", id)}, &updated)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to update consultation: %w", err))
	}

	s.mu.Lock()
	for i := range s.consultations {
		if s.consultations[i].ID == id {
			s.consultations[i] = updated
			break
		}
	}
	s.loading = false
	s.mu.Unlock()

	return &updated, nil
}

// Delete removes a consultation remotely, then from the cache.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.begin()

	if err := s.gw.Delete(ctx, relation, []gateway.Filter{gateway.Eq("id", id)}); err != nil {
		return s.fail(fmt.Errorf("failed to delete consultation: %w", err))
	}

	s.mu.Lock()
	kept := s.consultations[:0]
	for _, c := range s.consultations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.consultations = kept
	if s.selectedID != nil && *s.selectedID == id {
		s.selectedID = nil
	}
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Select sets the selected consultation. Nil clears it.
func (s *Store) Select(c *Consultation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.selectedID = nil
		return
	}
	id := c.ID
	s.selectedID = &id
}

// Selected resolves the selection against the cache.
func (s *Store) Selected() *Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	for i := range s.consultations {
		if s.consultations[i].ID == *s.selectedID {
			c := s.consultations[i]
			return &c
		}
	}
	return nil
}

// Consultations returns a snapshot of the cached rows.
func (s *Store) Consultations() []Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Consultation, len(s.consultations))
	copy(snapshot, s.consultations)
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
