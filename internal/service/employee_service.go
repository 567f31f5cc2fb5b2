package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/api/dto"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/repository"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// IdentityProvisioner creates accounts in the identity service on behalf of
// the caller whose bearer token is passed through.
type IdentityProvisioner interface {
	RegisterUser(ctx context.Context, bearer string, req dto.RegisterRequest) (*domain.User, error)
}

// EmployeeService manages employee records. Role checks happen before these
// methods run; the caller is passed for attribution.
type EmployeeService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	identity    IdentityProvisioner
	logger      *zap.Logger
}

// NewEmployeeService builds the service.
func NewEmployeeService(users repository.UserRepository, departments repository.DepartmentRepository, identity IdentityProvisioner, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{users: users, departments: departments, identity: identity, logger: logger}
}

// CreateEmployee provisions the account through the identity service using
// the caller's own token. A downstream rejection fails the whole operation.
func (s *EmployeeService) CreateEmployee(ctx context.Context, caller *auth.Principal, req dto.RegisterRequest) (*domain.User, error) {
	if req.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *req.DepartmentID); err != nil {
			return nil, notFoundOr(err, "invalid department ID")
		}
	}
	user, err := s.identity.RegisterUser(ctx, caller.Token, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee provisioned", zap.String("email", user.Email), zap.String("by", caller.Subject))
	return user, nil
}

// UpdateEmployee changes profile fields of an employee.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, caller auth.Claims, id int64, req dto.EmployeeUpdateRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}

	if req.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *req.DepartmentID); err != nil {
			return nil, notFoundOr(err, "invalid department ID")
		}
		user.DepartmentID = req.DepartmentID
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.Status != "" {
		user.Status = domain.UserStatus(strings.ToUpper(req.Status))
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFound(err, "user")
	}
	s.logger.Info("employee updated", zap.String("email", user.Email), zap.String("by", caller.Subject))
	return user, nil
}

// DeleteEmployee removes an employee.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, caller auth.Claims, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, "user")
	}
	s.logger.Info("employee deleted", zap.Int64("id", id), zap.String("by", caller.Subject))
	return nil
}

// ListEmployees returns every employee.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetEmployee returns one employee.
func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// ListByDepartment returns the employees of a department.
func (s *EmployeeService) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.User, error) {
	users, err := s.users.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetProfile returns the caller's own record.
func (s *EmployeeService) GetProfile(ctx context.Context, caller auth.Claims) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, caller.Subject)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func notFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource)
	}
	return apperrors.MapError(err)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError(message)
	}
	return apperrors.MapError(err)
}
