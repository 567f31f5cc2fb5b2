package domain

import "time"

// UserStatus represents lifecycle states for an employee account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User is an employee account known to the identity service.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *int64
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
