package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice/internal/api/http/handlers"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/gateway"
	"github.com/spec-kit/backoffice/internal/observability"
)

// CommonRoutes bundles the probes and metrics every process serves.
type CommonRoutes struct {
	Health  *handlers.HealthHandler
	Metrics *observability.Metrics
}

// IdentityRouteConfig bundles dependencies for the identity service.
type IdentityRouteConfig struct {
	CommonRoutes
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// EmployeeRouteConfig bundles dependencies for the employee service.
type EmployeeRouteConfig struct {
	CommonRoutes
	Employees      *handlers.EmployeesHandler
	Departments    *handlers.DepartmentsHandler
	AuthMiddleware *auth.Middleware
}

// GatewayRouteConfig bundles dependencies for the edge process.
type GatewayRouteConfig struct {
	CommonRoutes
	Filter *gateway.Filter
	Proxy  *gateway.Proxy
}

// RegisterCommonRoutes wires health and metrics endpoints.
func RegisterCommonRoutes(app *fiber.App, cfg CommonRoutes) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}
}

// RegisterIdentityRoutes wires the identity service routes.
func RegisterIdentityRoutes(app *fiber.App, cfg IdentityRouteConfig) {
	RegisterCommonRoutes(app, cfg.CommonRoutes)

	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	// register checks the ADMIN role inside the service
	authGroup.Post("/register", cfg.AuthMiddleware.Handle, cfg.Auth.Register)
}

// RegisterEmployeeRoutes wires the employee service routes. Every route
// re-verifies the token, whatever the gateway already did.
func RegisterEmployeeRoutes(app *fiber.App, cfg EmployeeRouteConfig) {
	RegisterCommonRoutes(app, cfg.CommonRoutes)

	admin := auth.RequireRole(domain.RoleAdmin)
	manager := auth.RequireRole(domain.RoleManager)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	employees := api.Group("/employees")
	employees.Post("", admin, cfg.Employees.Create)
	employees.Get("/all-employees", admin, cfg.Employees.List)
	employees.Get("/me", auth.RequireAuthenticated(), cfg.Employees.Me)
	employees.Get("/department/:id", manager, auth.RequireOwner(cfg.Employees.DepartmentManager), cfg.Employees.ByDepartment)
	employees.Get("/:id", admin, cfg.Employees.Get)
	employees.Put("/:id", admin, cfg.Employees.Update)
	employees.Delete("/:id", admin, cfg.Employees.Delete)

	departments := api.Group("/departments")
	departments.Post("", admin, cfg.Departments.Create)
	departments.Get("", admin, cfg.Departments.List)
	departments.Post("/:departmentId/assign-manager/:managerId", admin, cfg.Departments.AssignManager)
	departments.Get("/:id", admin, cfg.Departments.Get)
	departments.Put("/:id", admin, cfg.Departments.Update)
	departments.Delete("/:id", admin, cfg.Departments.Delete)
}

// RegisterGatewayRoutes runs every request except the gateway's own probes
// through the filter chain and then proxies it upstream.
func RegisterGatewayRoutes(app *fiber.App, cfg GatewayRouteConfig) {
	RegisterCommonRoutes(app, cfg.CommonRoutes)

	app.Use(cfg.Filter.Handle)
	app.All("/*", cfg.Proxy.Handle)
}
