package users

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
)

const relation = "users"

// Store caches the staff roster and performs all reads and writes
// against the remote relational store. The cache is only mutated
// after the gateway confirms the effect; a failed call leaves it at
// its last-known-good state and records the error.
//
// The selection is held as an id and resolved against the cache on
// read, so it can never drift from the cached rows. The current-user
// slot is separate: it is session identity, set by Login, and survives
// independently of the roster cache.
type Store struct {
	gw        gateway.Gateway
	publisher messaging.PublisherInterface

	mu         sync.Mutex
	users      []User
	loading    bool
	lastErr    string
	selectedID *int64
	current    *User
}

// NewStore creates a user store backed by the given gateway.
// publisher may be nil when event publishing is disabled.
func NewStore(gw gateway.Gateway, publisher messaging.PublisherInterface) *Store {
	return &Store{gw: gw, publisher: publisher}
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

// Fetch replaces the cached roster with all users ordered by recency.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	var rows []User
	err := s.gw.Select(ctx, relation, gateway.Query{
		Order: &gateway.Order{Column: "created_at", Descending: true},
	}, &rows)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch users: %w", err))
	}

	s.mu.Lock()
	s.users = rows
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Add creates a staff member and prepends the returned row to the cache.
func (s *Store) Add(ctx context.Context, req NewUser) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "active"
	}

	s.begin()

	var created User
	if err := s.gw.Insert(ctx, relation, req, &created); err != nil {
		return nil, s.fail(fmt.Errorf("failed to add user: %w", err))
	}

	s.mu.Lock()
	s.users = append([]User{created}, s.users...)
	s.loading = false
	s.mu.Unlock()

	if s.publisher != nil {
		event := messaging.UserCreatedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventUserCreated),
			Data: messaging.UserCreatedData{
				UserID:      created.ID,
				MedicalCode: created.MedicalCode,
				Name:        created.Name,
				Role:        created.Role,
				Department:  created.Department,
				CreatedAt:   created.CreatedAt,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventUserCreated, event); err != nil {
			log.Printf("Warning: failed to publish user.created event: %v", err)
		}
	}

	return &created, nil
}

// Update sends a partial update and replaces the cached row with the
// row the backend returns; server values win over submitted ones.
func (s *Store) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	s.begin()

	var updated User
	err := s.gw.Update(ctx, relation, req, []gateway.Filter{gateway.Eq("id", id)}, &updated)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to update user: %w", err))
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i] = updated
			break
		}
	}
	if s.current != nil && s.current.ID == id {
		current := updated
		s.current = &current
	}
	s.loading = false
	s.mu.Unlock()

	return &updated, nil
}

// Delete removes a staff member remotely, then from the cache. A
// selection pointing at the deleted row is cleared.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.begin()

	if err := s.gw.Delete(ctx, relation, []gateway.Filter{gateway.Eq("id", id)}); err != nil {
		return s.fail(fmt.Errorf("failed to delete user: %w", err))
	}

	s.mu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	if s.selectedID != nil && *s.selectedID == id {
		s.selectedID = nil
	}
	s.loading = false
	s.mu.Unlock()

	if s.publisher != nil {
		event := messaging.UserDeletedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventUserDeleted),
			Data: messaging.UserDeletedData{
				UserID:    id,
				DeletedAt: time.Now().UTC(),
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventUserDeleted, event); err != nil {
			log.Printf("Warning: failed to publish user.deleted event: %v", err)
		}
	}

	return nil
}

// Select sets the administrative browsing target. Nil clears it.
// No network call is made.
func (s *Store) Select(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.selectedID = nil
		return
	}
	id := u.ID
	s.selectedID = &id
}

// Selected resolves the selection against the cache. Returns nil when
// nothing is selected or the selected row is no longer cached.
func (s *Store) Selected() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	for i := range s.users {
		if s.users[i].ID == *s.selectedID {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

// Login looks up the user whose medical code matches and makes it the
// current user. Zero rows is a "User not found" failure even though
// the gateway itself did not error.
func (s *Store) Login(ctx context.Context, medicalCode string) (*User, error) {
	s.begin()

	var rows []User
	err := s.gw.Select(ctx, relation, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("medical_code", medicalCode)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to log in: %w", err))
	}
	if len(rows) == 0 {
		return nil, s.fail(ErrUserNotFound)
	}

	s.mu.Lock()
	current := rows[0]
	s.current = &current
	s.loading = false
	s.mu.Unlock()

	return &rows[0], nil
}

// Logout clears the current-user slot only. Cached rows and the
// selection are left untouched.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// CurrentUser returns a copy of the session identity, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Users returns a snapshot of the cached roster.
func (s *Store) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]User, len(s.users))
	copy(snapshot, s.users)
	return snapshot
}

// Loading reports whether an operation is in flight. The flag is a
// plain boolean: with concurrent operations its final value reflects
// whichever completion ran last.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message recorded by the most recent failed
// operation, or "" after a success.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
