package users

import "context"

// StoreInterface defines the contract for the user store
type StoreInterface interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, req NewUser) (*User, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
	Select(u *User)
	Selected() *User
	Login(ctx context.Context, medicalCode string) (*User, error)
	Logout()
	CurrentUser() *User
	Users() []User
	Loading() bool
	LastError() string
}

// Ensure Store implements StoreInterface
var _ StoreInterface = (*Store)(nil)
