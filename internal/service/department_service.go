package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/repository"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// DepartmentService manages departments and their managers.
type DepartmentService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
	logger      *zap.Logger
}

// NewDepartmentService builds the service.
func NewDepartmentService(departments repository.DepartmentRepository, users repository.UserRepository, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{departments: departments, users: users, logger: logger}
}

// CreateDepartment stores a new department.
func (s *DepartmentService) CreateDepartment(ctx context.Context, caller auth.Claims, name, description, managerEmail string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required")
	}
	dept := &domain.Department{
		Name:         name,
		Description:  description,
		ManagerEmail: strings.ToLower(strings.TrimSpace(managerEmail)),
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("department created", zap.String("name", dept.Name), zap.String("by", caller.Subject))
	return dept, nil
}

// UpdateDepartment replaces the editable fields of a department.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, caller auth.Claims, id int64, name, description, managerEmail string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "department")
	}
	if n := strings.TrimSpace(name); n != "" {
		dept.Name = n
	}
	dept.Description = description
	dept.ManagerEmail = strings.ToLower(strings.TrimSpace(managerEmail))

	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, notFound(err, "department")
	}
	s.logger.Info("department updated", zap.String("name", dept.Name), zap.String("by", caller.Subject))
	return dept, nil
}

// DeleteDepartment removes a department.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, caller auth.Claims, id int64) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return notFound(err, "department")
	}
	s.logger.Info("department deleted", zap.Int64("id", id), zap.String("by", caller.Subject))
	return nil
}

// GetDepartment returns one department.
func (s *DepartmentService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "department")
	}
	return dept, nil
}

// ListDepartments returns all departments.
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// AssignManager makes a MANAGER-role user the manager of a department.
func (s *DepartmentService) AssignManager(ctx context.Context, caller auth.Claims, departmentID, managerID int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, notFound(err, "department")
	}
	manager, err := s.users.GetByID(ctx, managerID)
	if err != nil {
		return nil, notFound(err, "manager")
	}
	if manager.Role != domain.RoleManager {
		return nil, apperrors.NewValidationError("specified user is not a manager")
	}

	dept.ManagerEmail = manager.Email
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, notFound(err, "department")
	}
	s.logger.Info("manager assigned",
		zap.Int64("department_id", dept.ID),
		zap.String("manager", manager.Email),
		zap.String("by", caller.Subject),
	)
	return dept, nil
}

// ManagerOf returns the subject that owns a department for ownership checks.
func (s *DepartmentService) ManagerOf(ctx context.Context, departmentID int64) (string, error) {
	dept, err := s.GetDepartment(ctx, departmentID)
	if err != nil {
		return "", err
	}
	return dept.ManagerEmail, nil
}
