package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicore/department-service/internal/auth"
	"github.com/gorilla/mux"
)

type mockStore struct {
	fetchFunc  func(ctx context.Context) error
	addFunc    func(ctx context.Context, req NewUser) (*User, error)
	updateFunc func(ctx context.Context, id int64, req UpdateUserRequest) (*User, error)
	deleteFunc func(ctx context.Context, id int64) error
	loginFunc  func(ctx context.Context, medicalCode string) (*User, error)
	logoutFunc func()
	usersFunc  func() []User
}

func (m *mockStore) Fetch(ctx context.Context) error {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil
}

func (m *mockStore) Add(ctx context.Context, req NewUser) (*User, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockStore) Select(u *User)     {}
func (m *mockStore) Selected() *User    { return nil }
func (m *mockStore) CurrentUser() *User { return nil }
func (m *mockStore) Loading() bool      { return false }
func (m *mockStore) LastError() string  { return "" }

func (m *mockStore) Login(ctx context.Context, medicalCode string) (*User, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, medicalCode)
	}
	return nil, errors.New("not implemented")
}

func (m *mockStore) Logout() {
	if m.logoutFunc != nil {
		m.logoutFunc()
	}
}

func (m *mockStore) Users() []User {
	if m.usersFunc != nil {
		return m.usersFunc()
	}
	return nil
}

func testVerifier() *auth.Verifier {
	return auth.NewVerifier("test-secret", time.Hour)
}

// TestLoginHandler_Success tests the login flow and the issued token
func TestLoginHandler_Success(t *testing.T) {
	store := &mockStore{
		loginFunc: func(ctx context.Context, medicalCode string) (*User, error) {
			if medicalCode != "MC-009" {
				t.Errorf("Expected medical code 'MC-009', got '%s'", medicalCode)
			}
			return &User{ID: 9, MedicalCode: "MC-009", Name: "Dr. Haddad", Role: RoleDoctor}, nil
		},
	}
	verifier := testVerifier()
	handler := NewHandler(store, verifier)

	body, _ := json.Marshal(LoginRequest{MedicalCode: "MC-009"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.User.ID != 9 {
		t.Errorf("Expected user 9, got %d", resp.User.ID)
	}

	pr, err := verifier.ParseAndVerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("Expected a valid session token, got: %v", err)
	}
	if pr.UserID != 9 || pr.Role != RoleDoctor {
		t.Errorf("Expected principal for user 9, got %+v", pr)
	}
}

// TestLoginHandler_NotFound tests the unknown medical code path
func TestLoginHandler_NotFound(t *testing.T) {
	store := &mockStore{
		loginFunc: func(ctx context.Context, medicalCode string) (*User, error) {
			return nil, ErrUserNotFound
		},
	}
	handler := NewHandler(store, testVerifier())

	body, _ := json.Marshal(LoginRequest{MedicalCode: "MC-404"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if rec.Body.String() != "User not found\n" {
		t.Errorf("Expected body 'User not found', got '%s'", rec.Body.String())
	}
}

// TestLoginHandler_MissingCode tests the empty payload case
func TestLoginHandler_MissingCode(t *testing.T) {
	handler := NewHandler(&mockStore{}, testVerifier())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

// TestLogoutHandler tests that logout clears the session and returns 204
func TestLogoutHandler(t *testing.T) {
	loggedOut := false
	store := &mockStore{
		logoutFunc: func() { loggedOut = true },
	}
	handler := NewHandler(store, testVerifier())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if !loggedOut {
		t.Error("Expected store logout to be called")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}

// TestListUsersHandler tests the fetch-then-paginate listing
func TestListUsersHandler(t *testing.T) {
	store := &mockStore{
		usersFunc: func() []User {
			return []User{
				{ID: 2, Name: "Dr. Reyes"},
				{ID: 1, Name: "Nurse Okafor"},
			}
		},
	}
	handler := NewHandler(store, testVerifier())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()

	handler.ListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(resp.Users))
	}
}

// TestCreateUserHandler_ValidationError tests the 400 mapping
func TestCreateUserHandler_ValidationError(t *testing.T) {
	store := &mockStore{
		addFunc: func(ctx context.Context, req NewUser) (*User, error) {
			return nil, ErrMissingMedicalCode
		},
	}
	handler := NewHandler(store, testVerifier())

	body, _ := json.Marshal(NewUser{Name: "Dr. Haddad"})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

// TestCreateUserHandler_Success tests the created response
func TestCreateUserHandler_Success(t *testing.T) {
	store := &mockStore{
		addFunc: func(ctx context.Context, req NewUser) (*User, error) {
			return &User{ID: 7, MedicalCode: req.MedicalCode, Name: req.Name, Role: req.Role}, nil
		},
	}
	handler := NewHandler(store, testVerifier())

	body, _ := json.Marshal(NewUser{MedicalCode: "MC-007", Name: "Dr. Haddad", Role: RoleDoctor, Department: "cardiology"})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateUser(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var created User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("Expected user 7, got %d", created.ID)
	}
}

// TestDeleteUserHandler_InvalidID tests id parsing
func TestDeleteUserHandler_InvalidID(t *testing.T) {
	handler := NewHandler(&mockStore{}, testVerifier())

	req := httptest.NewRequest(http.MethodDelete, "/users/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()

	handler.DeleteUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

// TestDeleteUserHandler_Success tests the delete path
func TestDeleteUserHandler_Success(t *testing.T) {
	var deletedID int64
	store := &mockStore{
		deleteFunc: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	handler := NewHandler(store, testVerifier())

	req := httptest.NewRequest(http.MethodDelete, "/users/5", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()

	handler.DeleteUser(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if deletedID != 5 {
		t.Errorf("Expected user 5 deleted, got %d", deletedID)
	}
}
