package entity

import (
	"time"
)

// Role is the authorization role attached to a user account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User is the aggregate root for the user directory.
// Password always holds a bcrypt hash, never a plaintext.
type User struct {
	ID          string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
