package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice/internal/api/dto"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/service"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// EmployeesHandler exposes /api/v1/employees.
type EmployeesHandler struct {
	employees   *service.EmployeeService
	departments *service.DepartmentService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService, departments *service.DepartmentService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees, departments: departments}
}

// Create handles POST /api/v1/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, err := h.employees.CreateEmployee(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Success("User registered successfully", dto.NewUserResponse(user)))
}

// Update handles PUT /api/v1/employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.EmployeeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	user, err := h.employees.UpdateEmployee(c.UserContext(), principal.Claims, id, req)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("User updated successfully", dto.NewUserResponse(user)))
}

// Delete handles DELETE /api/v1/employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.employees.DeleteEmployee(c.UserContext(), principal.Claims, id); err != nil {
		return err
	}
	return c.JSON(dto.Success[any]("User deleted successfully", nil))
}

// List handles GET /api/v1/employees/all-employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	users, err := h.employees.ListEmployees(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("All users fetched successfully", userResponses(users)))
}

// Get handles GET /api/v1/employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.employees.GetEmployee(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("User fetched successfully", dto.NewUserResponse(user)))
}

// ByDepartment handles GET /api/v1/employees/department/:id.
func (h *EmployeesHandler) ByDepartment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.employees.ListByDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("Users in department fetched successfully", userResponses(users)))
}

// DepartmentManager resolves the owner of the department addressed by :id.
func (h *EmployeesHandler) DepartmentManager(c *fiber.Ctx) (string, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return "", err
	}
	return h.departments.ManagerOf(c.UserContext(), id)
}

// Me handles GET /api/v1/employees/me.
func (h *EmployeesHandler) Me(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	user, err := h.employees.GetProfile(c.UserContext(), principal.Claims)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("Profile fetched successfully", dto.NewUserResponse(user)))
}

func principalOf(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized(auth.ErrMissingBearer)
	}
	return principal, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid " + name)
	}
	return id, nil
}

func userResponses(users []domain.User) []dto.UserResponse {
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return resp
}
