package dto

import (
	"time"

	"github.com/spec-kit/backoffice/internal/domain"
)

// DepartmentRequest payload for create/update.
type DepartmentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ManagerEmail string `json:"managerEmail,omitempty"`
}

// DepartmentResponse is the API view of a department.
type DepartmentResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ManagerEmail string    `json:"managerEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewDepartmentResponse projects a domain department.
func NewDepartmentResponse(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:           dept.ID,
		Name:         dept.Name,
		Description:  dept.Description,
		ManagerEmail: dept.ManagerEmail,
		CreatedAt:    dept.CreatedAt,
	}
}
