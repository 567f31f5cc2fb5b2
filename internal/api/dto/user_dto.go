package dto

import (
	"time"

	"github.com/spec-kit/backoffice/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for provisioning a user in the identity service.
type RegisterRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
	Status       string `json:"status,omitempty"`
}

// EmployeeUpdateRequest payload for PUT /employees/:id.
type EmployeeUpdateRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Status       string `json:"status"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
}

// UserResponse is the sanitized view of a user. It has no password field.
type UserResponse struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	DepartmentID *int64     `json:"departmentId,omitempty"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// LoginData is the data member of a successful login.
type LoginData struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// LoginResponse mirrors {message, data: {token, user}}.
type LoginResponse struct {
	Message string    `json:"message"`
	Data    LoginData `json:"data"`
}

// NewUserResponse projects a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Role:         string(user.Role),
		DepartmentID: user.DepartmentID,
		Status:       string(user.Status),
	}
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
