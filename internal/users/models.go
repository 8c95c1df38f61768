package users

import "time"

// Roles a staff member can hold
const (
	RoleDoctor        = "doctor"
	RoleNurse         = "nurse"
	RoleAdministrator = "administrator"
)

// User represents a staff member of the department
type User struct {
	ID          int64     `json:"id"`
	MedicalCode string    `json:"medical_code"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Department  string    `json:"department"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUser represents the request to create a staff member. The id and
// timestamps are assigned by the backend.
type NewUser struct {
	MedicalCode string `json:"medical_code"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	Status      string `json:"status,omitempty"`
}

// UpdateUserRequest represents a partial update of a staff member
type UpdateUserRequest struct {
	MedicalCode string `json:"medical_code,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Department  string `json:"department,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Validate validates the create user request
func (r *NewUser) Validate() error {
	if r.MedicalCode == "" {
		return ErrMissingMedicalCode
	}
	if r.Name == "" {
		return ErrMissingName
	}
	switch r.Role {
	case RoleDoctor, RoleNurse, RoleAdministrator:
	default:
		return ErrInvalidRole
	}
	if r.Department == "" {
		return ErrMissingDepartment
	}
	return nil
}
