package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice/internal/api/dto"
	"github.com/spec-kit/backoffice/internal/service"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// DepartmentsHandler exposes /api/v1/departments.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

// Create handles POST /api/v1/departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	dept, err := h.departments.CreateDepartment(c.UserContext(), principal.Claims, req.Name, req.Description, req.ManagerEmail)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Success("Department created successfully", dto.NewDepartmentResponse(dept)))
}

// Update handles PUT /api/v1/departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	dept, err := h.departments.UpdateDepartment(c.UserContext(), principal.Claims, id, req.Name, req.Description, req.ManagerEmail)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("Department updated successfully", dto.NewDepartmentResponse(dept)))
}

// Delete handles DELETE /api/v1/departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.departments.DeleteDepartment(c.UserContext(), principal.Claims, id); err != nil {
		return err
	}
	return c.JSON(dto.Success[any]("Department deleted successfully", nil))
}

// Get handles GET /api/v1/departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.departments.GetDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("Department details fetched successfully", dto.NewDepartmentResponse(dept)))
}

// List handles GET /api/v1/departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	depts, err := h.departments.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		resp = append(resp, dto.NewDepartmentResponse(&depts[i]))
	}
	return c.JSON(dto.Success("All departments fetched successfully", resp))
}

// AssignManager handles POST /api/v1/departments/:departmentId/assign-manager/:managerId.
func (h *DepartmentsHandler) AssignManager(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	deptID, err := pathID(c, "departmentId")
	if err != nil {
		return err
	}
	managerID, err := pathID(c, "managerId")
	if err != nil {
		return err
	}
	dept, err := h.departments.AssignManager(c.UserContext(), principal.Claims, deptID, managerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("Manager assigned to department successfully", dto.NewDepartmentResponse(dept)))
}
