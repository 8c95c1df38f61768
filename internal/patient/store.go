package patient

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
	"github.com/clinicore/department-service/internal/users"
)

const (
	relationPatients   = "patients"
	relationAdmissions = "admissions"
	relationUsers      = "users"
)

// Store caches patient rows together with the view derived from each
// patient's latest admission. Fetch performs the join explicitly: it
// reads patients, admissions and users in three calls and merges them
// here, so the "which admission is current" rule lives in one named
// function instead of inside a nested query.
type Store struct {
	gw        gateway.Gateway
	publisher messaging.PublisherInterface

	mu         sync.Mutex
	patients   []Patient
	loading    bool
	lastErr    string
	selectedID *int64
}

// NewStore creates a patient store backed by the given gateway.
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

// Fetch replaces the cache with all patients, each carrying the view
// derived from its latest admission. Admissions are requested most-
// recent-first; the derivation takes the first row per patient, so
// the ordering contract is what makes "first" mean "latest".
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	var patients []Patient
	err := s.gw.Select(ctx, relationPatients, gateway.Query{
		Order: &gateway.Order{Column: "created_at", Descending: true},
	}, &patients)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch patients: %w", err))
	}

	var admissions []Admission
	err = s.gw.Select(ctx, relationAdmissions, gateway.Query{
		Order: &gateway.Order{Column: "admission_date", Descending: true},
	}, &admissions)
	if err != nil {
		return s.fail(fmt.Errorf("failed to fetch admissions: %w", err))
	}

	var staff []users.User
	if err := s.gw.Select(ctx, relationUsers, gateway.Query{}, &staff); err != nil {
		return s.fail(fmt.Errorf("failed to fetch doctors: %w", err))
	}

	byPatient := groupAdmissions(admissions)
	doctorNames := make(map[int64]string, len(staff))
	for _, u := range staff {
		doctorNames[u.ID] = u.Name
	}

	for i := range patients {
		applyLatestAdmission(&patients[i], byPatient[patients[i].ID], doctorNames)
	}

	s.mu.Lock()
	s.patients = patients
	s.loading = false
	s.mu.Unlock()
	return nil
}

// groupAdmissions buckets admissions per patient, preserving the
// order the gateway returned them in.
func groupAdmissions(admissions []Admission) map[int64][]Admission {
	byPatient := make(map[int64][]Admission)
	for _, a := range admissions {
		byPatient[a.PatientID] = append(byPatient[a.PatientID], a)
	}
	return byPatient
}

// applyLatestAdmission derives doctor_name, department, diagnosis and
// admission_date from the first admission in the slice. It is a fixed
// first-row-wins rule, not a max-by-date computation: callers must
// hand in admissions most-recent-first.
func applyLatestAdmission(p *Patient, admissions []Admission, doctorNames map[int64]string) {
	p.DoctorName = ""
	p.Department = ""
	p.Diagnosis = ""
	p.AdmissionDate = nil

	if len(admissions) == 0 {
		return
	}

	latest := admissions[0]
	p.DoctorName = doctorNames[latest.AssignedDoctorID]
	p.Department = latest.Department
	p.Diagnosis = latest.Diagnosis
	date := latest.AdmissionDate
	p.AdmissionDate = &date
}

// Add registers a patient without an admission and prepends the
// returned row to the cache.
func (s *Store) Add(ctx context.Context, req NewPatient) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.begin()

	var created Patient
	if err := s.gw.Insert(ctx, relationPatients, req, &created); err != nil {
		return nil, s.fail(fmt.Errorf("failed to add patient: %w", err))
	}

	s.mu.Lock()
	s.patients = append([]Patient{created}, s.patients...)
	s.loading = false
	s.mu.Unlock()

	return &created, nil
}

// Admit registers a patient and opens an active admission for them in
// one operation. No check is made for an existing active admission:
// a second admission simply becomes the latest one the derived view
// reflects.
func (s *Store) Admit(ctx context.Context, req NewPatient, adm NewAdmission) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.begin()

	var created Patient
	if err := s.gw.Insert(ctx, relationPatients, req, &created); err != nil {
		return nil, s.fail(fmt.Errorf("failed to add patient: %w", err))
	}

	insert := admissionInsert{NewAdmission: adm, PatientID: created.ID, Status: StatusActive}
	var admission Admission
	if err := s.gw.Insert(ctx, relationAdmissions, insert, &admission); err != nil {
		// The patient row exists remotely, so it stays in the cache;
		// the admission does not.
		s.mu.Lock()
		s.patients = append([]Patient{created}, s.patients...)
		s.mu.Unlock()
		return nil, s.fail(fmt.Errorf("failed to add admission: %w", err))
	}

	created.Department = admission.Department
	created.Diagnosis = admission.Diagnosis
	date := admission.AdmissionDate
	created.AdmissionDate = &date
	created.DoctorName = s.lookupDoctorName(ctx, admission.AssignedDoctorID)

	s.mu.Lock()
	s.patients = append([]Patient{created}, s.patients...)
	s.loading = false
	s.mu.Unlock()

	if s.publisher != nil {
		event := messaging.PatientAdmittedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventPatientAdmitted),
			Data: messaging.PatientAdmittedData{
				PatientID:        created.ID,
				AdmissionID:      admission.ID,
				MRN:              created.MRN,
				Name:             created.Name,
				Department:       admission.Department,
				Diagnosis:        admission.Diagnosis,
				AssignedDoctorID: admission.AssignedDoctorID,
				AdmissionDate:    admission.AdmissionDate,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventPatientAdmitted, event); err != nil {
			log.Printf("Warning: failed to publish patient.admitted event: %v", err)
		}
	}

	return &created, nil
}

func (s *Store) lookupDoctorName(ctx context.Context, doctorID int64) string {
	var staff []users.User
	err := s.gw.Select(ctx, relationUsers, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("id", doctorID)},
		Limit:   1,
	}, &staff)
	if err != nil || len(staff) == 0 {
		log.Printf("Warning: could not resolve doctor %d: %v", doctorID, err)
		return ""
	}
	return staff[0].Name
}

// Update sends a partial update and shallow-merges the returned row
// into the cached one. The backend never returns the derived fields,
// so they are carried over from the cached row rather than recomputed.
func (s *Store) Update(ctx context.Context, id int64, req UpdatePatientRequest) (*Patient, error) {
	s.begin()

	var updated Patient
	err := s.gw.Update(ctx, relationPatients, req, []gateway.Filter{gateway.Eq("id", id)}, &updated)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to update patient: %w", err))
	}

	s.mu.Lock()
	for i := range s.patients {
		if s.patients[i].ID == id {
			mergePatientRow(&updated, s.patients[i])
			s.patients[i] = updated
			break
		}
	}
	s.loading = false
	s.mu.Unlock()

	return &updated, nil
}

// mergePatientRow carries the cached derived fields onto a freshly
// returned persisted row.
func mergePatientRow(updated *Patient, cached Patient) {
	updated.DoctorName = cached.DoctorName
	updated.Department = cached.Department
	updated.Diagnosis = cached.Diagnosis
	updated.AdmissionDate = cached.AdmissionDate
}

// Delete removes a patient remotely, then from the cache. A selection
// pointing at the deleted row is cleared.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.begin()

	if err := s.gw.Delete(ctx, relationPatients, []gateway.Filter{gateway.Eq("id", id)}); err != nil {
		return s.fail(fmt.Errorf("failed to delete patient: %w", err))
	}

	s.mu.Lock()
	kept := s.patients[:0]
	for _, p := range s.patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.patients = kept
	if s.selectedID != nil && *s.selectedID == id {
		s.selectedID = nil
	}
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Select sets the selected patient. Nil clears it. No network call.
func (s *Store) Select(p *Patient) {
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
func (s *Store) Selected() *Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == nil {
		return nil
	}
	for i := range s.patients {
		if s.patients[i].ID == *s.selectedID {
			p := s.patients[i].clone()
			return &p
		}
	}
	return nil
}

// Patients returns a snapshot of the cached rows.
func (s *Store) Patients() []Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Patient, len(s.patients))
	for i := range s.patients {
		snapshot[i] = s.patients[i].clone()
	}
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
