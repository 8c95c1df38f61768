package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
	"github.com/clinicore/department-service/internal/testutil"
	"github.com/clinicore/department-service/internal/users"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// joinGateway returns a mock that serves fixture rows for the three
// relations Fetch reads, honoring the requested admission ordering.
func joinGateway(t *testing.T, patients []Patient, admissions []Admission, staff []users.User) *testutil.MockGateway {
	return &testutil.MockGateway{
		SelectFunc: func(ctx context.Context, relation string, q gateway.Query, dest interface{}) error {
			switch relation {
			case "patients":
				if q.Order == nil || q.Order.Column != "created_at" || !q.Order.Descending {
					t.Error("Expected patients ordered by created_at descending")
				}
				return testutil.DecodeRows(dest, patients)
			case "admissions":
				if q.Order == nil || q.Order.Column != "admission_date" || !q.Order.Descending {
					t.Error("Expected admissions ordered by admission_date descending")
				}
				return testutil.DecodeRows(dest, admissions)
			case "users":
				return testutil.DecodeRows(dest, staff)
			default:
				t.Errorf("Unexpected relation '%s'", relation)
				return nil
			}
		},
	}
}

// TestFetchPatients_DerivesFromLatestAdmission tests that the derived
// view comes from the most recent admission per patient
func TestFetchPatients_DerivesFromLatestAdmission(t *testing.T) {
	patients := []Patient{{ID: 1, MRN: "MRN-001", Name: "Ada Obi"}}
	// Most-recent-first, as the ordering contract requires.
	admissions := []Admission{
		{ID: 20, PatientID: 1, AdmissionDate: date("2024-03-20"), Department: "cardiology", Diagnosis: "arrhythmia", AssignedDoctorID: 5, Status: StatusActive},
		{ID: 10, PatientID: 1, AdmissionDate: date("2024-02-01"), Department: "oncology", Diagnosis: "screening", AssignedDoctorID: 6, Status: StatusDischarged},
	}
	staff := []users.User{{ID: 5, Name: "Dr. Reyes"}, {ID: 6, Name: "Dr. Haddad"}}

	store := NewStore(joinGateway(t, patients, admissions, staff), nil)

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	got := store.Patients()
	if len(got) != 1 {
		t.Fatalf("Expected 1 patient, got %d", len(got))
	}
	p := got[0]
	if p.DoctorName != "Dr. Reyes" {
		t.Errorf("Expected doctor 'Dr. Reyes', got '%s'", p.DoctorName)
	}
	if p.Department != "cardiology" {
		t.Errorf("Expected department 'cardiology', got '%s'", p.Department)
	}
	if p.Diagnosis != "arrhythmia" {
		t.Errorf("Expected diagnosis 'arrhythmia', got '%s'", p.Diagnosis)
	}
	if p.AdmissionDate == nil || !p.AdmissionDate.Equal(date("2024-03-20")) {
		t.Errorf("Expected admission date 2024-03-20, got %v", p.AdmissionDate)
	}
}

// TestFetchPatients_NoAdmissions tests that a patient without
// admissions carries empty derived fields
func TestFetchPatients_NoAdmissions(t *testing.T) {
	patients := []Patient{{ID: 2, MRN: "MRN-002", Name: "Ben Cole"}}

	store := NewStore(joinGateway(t, patients, nil, nil), nil)

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	p := store.Patients()[0]
	if p.DoctorName != "" || p.Department != "" || p.Diagnosis != "" {
		t.Errorf("Expected empty derived fields, got %+v", p)
	}
	if p.AdmissionDate != nil {
		t.Errorf("Expected nil admission date, got %v", p.AdmissionDate)
	}
}

// TestFetchPatients_UnknownDoctor tests that an admission referencing
// a missing staff row yields an empty doctor name, not an error
func TestFetchPatients_UnknownDoctor(t *testing.T) {
	patients := []Patient{{ID: 3, MRN: "MRN-003", Name: "Cara Diaz"}}
	admissions := []Admission{
		{ID: 30, PatientID: 3, AdmissionDate: date("2024-05-01"), Department: "neurology", AssignedDoctorID: 99, Status: StatusActive},
	}

	store := NewStore(joinGateway(t, patients, admissions, nil), nil)

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	p := store.Patients()[0]
	if p.DoctorName != "" {
		t.Errorf("Expected empty doctor name, got '%s'", p.DoctorName)
	}
	if p.Department != "neurology" {
		t.Errorf("Expected department 'neurology', got '%s'", p.Department)
	}
}

// TestFetchPatients_FailureKeepsCache tests that a failed fetch leaves
// the previous rows in place
func TestFetchPatients_FailureKeepsCache(t *testing.T) {
	mockGw := &testutil.MockGateway{
		SelectFunc: func(ctx context.Context, relation string, q gateway.Query, dest interface{}) error {
			return errors.New("connection refused")
		},
	}

	store := NewStore(mockGw, nil)
	store.patients = []Patient{{ID: 1, Name: "Ada Obi"}}

	if err := store.Fetch(context.Background()); err == nil {
		t.Fatal("Expected error, got nil")
	}

	if len(store.Patients()) != 1 {
		t.Errorf("Expected cache to keep 1 patient, got %d", len(store.Patients()))
	}
	if store.LastError() == "" {
		t.Error("Expected error slot to be set")
	}
}

// TestApplyLatestAdmission_FirstRowWins tests the derivation rule
// directly: it takes the first row, it does not compare dates
func TestApplyLatestAdmission_FirstRowWins(t *testing.T) {
	p := Patient{ID: 1}
	admissions := []Admission{
		{PatientID: 1, AdmissionDate: date("2024-02-01"), Department: "oncology", AssignedDoctorID: 6},
		{PatientID: 1, AdmissionDate: date("2024-03-20"), Department: "cardiology", AssignedDoctorID: 5},
	}

	applyLatestAdmission(&p, admissions, map[int64]string{5: "Dr. Reyes", 6: "Dr. Haddad"})

	// First row wins even though the second has the later date.
	if p.Department != "oncology" {
		t.Errorf("Expected department 'oncology', got '%s'", p.Department)
	}
	if p.DoctorName != "Dr. Haddad" {
		t.Errorf("Expected doctor 'Dr. Haddad', got '%s'", p.DoctorName)
	}
}

// TestAdmitPatient_Success tests that admit creates both rows and
// derives the view from the new admission
func TestAdmitPatient_Success(t *testing.T) {
	admissionDate := date("2024-06-10")
	mockGw := &testutil.MockGateway{
		InsertFunc: func(ctx context.Context, relation string, record interface{}, dest interface{}) error {
			switch relation {
			case "patients":
				return testutil.DecodeRows(dest, Patient{ID: 11, MRN: "MRN-011", Name: "Ada Obi"})
			case "admissions":
				insert, ok := record.(admissionInsert)
				if !ok {
					t.Fatalf("Expected admissionInsert record, got %T", record)
				}
				if insert.PatientID != 11 {
					t.Errorf("Expected admission bound to patient 11, got %d", insert.PatientID)
				}
				if insert.Status != StatusActive {
					t.Errorf("Expected status 'active', got '%s'", insert.Status)
				}
				return testutil.DecodeRows(dest, Admission{
					ID: 41, PatientID: 11, AdmissionDate: admissionDate,
					Department: "cardiology", Diagnosis: "arrhythmia", AssignedDoctorID: 5, Status: StatusActive,
				})
			default:
				t.Errorf("Unexpected insert on '%s'", relation)
				return nil
			}
		},
		SelectFunc: func(ctx context.Context, relation string, q gateway.Query, dest interface{}) error {
			return testutil.DecodeRows(dest, []users.User{{ID: 5, Name: "Dr. Reyes"}})
		},
	}
	publisher := testutil.NewMockPublisher()

	store := NewStore(mockGw, publisher)

	created, err := store.Admit(context.Background(),
		NewPatient{MRN: "MRN-011", Name: "Ada Obi", Age: 58, Gender: "female"},
		NewAdmission{AdmissionDate: admissionDate, Department: "cardiology", Diagnosis: "arrhythmia", AssignedDoctorID: 5},
	)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if created.Department != "cardiology" || created.DoctorName != "Dr. Reyes" {
		t.Errorf("Expected derived view from admission, got %+v", created)
	}

	cached := store.Patients()
	if len(cached) != 1 || cached[0].ID != 11 {
		t.Errorf("Expected patient 11 cached, got %v", cached)
	}

	publisher.AssertEventPublished(t, messaging.EventPatientAdmitted)
}

// TestAdmitPatient_AdmissionFailure tests that a failed admission
// insert still caches the patient row that was created remotely
func TestAdmitPatient_AdmissionFailure(t *testing.T) {
	mockGw := &testutil.MockGateway{
		InsertFunc: func(ctx context.Context, relation string, record interface{}, dest interface{}) error {
			if relation == "patients" {
				return testutil.DecodeRows(dest, Patient{ID: 12, MRN: "MRN-012", Name: "Ben Cole"})
			}
			return errors.New("admissions insert failed")
		},
	}
	publisher := testutil.NewMockPublisher()

	store := NewStore(mockGw, publisher)

	created, err := store.Admit(context.Background(),
		NewPatient{MRN: "MRN-012", Name: "Ben Cole"},
		NewAdmission{AdmissionDate: date("2024-06-10"), Department: "cardiology"},
	)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if created != nil {
		t.Error("Expected nil patient on admission failure")
	}

	cached := store.Patients()
	if len(cached) != 1 || cached[0].ID != 12 {
		t.Errorf("Expected orphaned patient row to stay cached, got %v", cached)
	}
	if store.LastError() == "" {
		t.Error("Expected error slot to be set")
	}

	publisher.AssertEventNotPublished(t, messaging.EventPatientAdmitted)
}

// TestUpdatePatient_PreservesDerivedFields tests the shallow merge:
// persisted fields come from the backend, derived ones from the cache
func TestUpdatePatient_PreservesDerivedFields(t *testing.T) {
	admissionDate := date("2024-03-20")
	mockGw := &testutil.MockGateway{
		UpdateFunc: func(ctx context.Context, relation string, fields interface{}, filters []gateway.Filter, dest interface{}) error {
			// Backend returns persisted columns only.
			return testutil.DecodeRows(dest, Patient{ID: 1, MRN: "MRN-001", Name: "Ada Obi-Nwosu", Age: 59})
		},
	}

	store := NewStore(mockGw, nil)
	store.patients = []Patient{{
		ID: 1, MRN: "MRN-001", Name: "Ada Obi", Age: 58,
		DoctorName: "Dr. Reyes", Department: "cardiology", Diagnosis: "arrhythmia", AdmissionDate: &admissionDate,
	}}

	updated, err := store.Update(context.Background(), 1, UpdatePatientRequest{Name: "Ada Obi-Nwosu", Age: 59})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.Name != "Ada Obi-Nwosu" {
		t.Errorf("Expected updated name, got '%s'", updated.Name)
	}
	if updated.DoctorName != "Dr. Reyes" || updated.Department != "cardiology" || updated.Diagnosis != "arrhythmia" {
		t.Errorf("Expected derived fields preserved, got %+v", updated)
	}
	if updated.AdmissionDate == nil || !updated.AdmissionDate.Equal(admissionDate) {
		t.Errorf("Expected admission date preserved, got %v", updated.AdmissionDate)
	}

	cached := store.Patients()[0]
	if cached.DoctorName != "Dr. Reyes" {
		t.Errorf("Expected cached row to keep derived fields, got %+v", cached)
	}
}

// TestDeletePatient_ClearsMatchingSelection tests selection handling
// on delete
func TestDeletePatient_ClearsMatchingSelection(t *testing.T) {
	mockGw := &testutil.MockGateway{
		DeleteFunc: func(ctx context.Context, relation string, filters []gateway.Filter) error {
			if !testutil.HasFilter(filters, "id", gateway.OpEq) {
				t.Error("Expected delete filtered by id")
			}
			return nil
		},
	}

	store := NewStore(mockGw, nil)
	store.patients = []Patient{{ID: 1, Name: "Ada Obi"}, {ID: 2, Name: "Ben Cole"}}
	store.Select(&Patient{ID: 1})

	if err := store.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if store.Selected() != nil {
		t.Error("Expected selection to be cleared")
	}
	if len(store.Patients()) != 1 {
		t.Errorf("Expected 1 patient left, got %d", len(store.Patients()))
	}
}

// TestAddPatient_ValidationError tests that invalid requests never
// reach the gateway
func TestAddPatient_ValidationError(t *testing.T) {
	mockGw := &testutil.MockGateway{}
	store := NewStore(mockGw, nil)

	if _, err := store.Add(context.Background(), NewPatient{Name: "No MRN"}); err != ErrMissingMRN {
		t.Errorf("Expected ErrMissingMRN, got: %v", err)
	}
	if _, err := store.Add(context.Background(), NewPatient{MRN: "MRN-013"}); err != ErrMissingName {
		t.Errorf("Expected ErrMissingName, got: %v", err)
	}
	if len(mockGw.Calls()) != 0 {
		t.Errorf("Expected no gateway calls, got %d", len(mockGw.Calls()))
	}
}

// TestPatients_SnapshotDetached tests that mutating a snapshot's
// admission date cannot reach the cached row
func TestPatients_SnapshotDetached(t *testing.T) {
	admitted := date("2024-03-20")
	store := NewStore(&testutil.MockGateway{}, nil)
	store.patients = []Patient{
		{ID: 1, MRN: "MRN-001", Name: "Ada Osei", AdmissionDate: &admitted},
	}

	snapshot := store.Patients()
	*snapshot[0].AdmissionDate = date("1999-01-01")

	cached := store.Patients()
	if !cached[0].AdmissionDate.Equal(admitted) {
		t.Errorf("Expected cached admission date %v, got %v", admitted, cached[0].AdmissionDate)
	}

	store.Select(&Patient{ID: 1})
	selected := store.Selected()
	*selected.AdmissionDate = date("1999-01-01")

	cached = store.Patients()
	if !cached[0].AdmissionDate.Equal(admitted) {
		t.Errorf("Expected cached admission date %v after selected mutation, got %v", admitted, cached[0].AdmissionDate)
	}
}
