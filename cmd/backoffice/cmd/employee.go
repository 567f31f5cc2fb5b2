package cmd

import (
	"github.com/spf13/cobra"

	httptransport "github.com/spec-kit/backoffice/internal/api/http"
	"github.com/spec-kit/backoffice/internal/api/http/handlers"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/client"
	"github.com/spec-kit/backoffice/internal/repository"
	"github.com/spec-kit/backoffice/internal/service"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Run the employee and department service",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap("employee", "8082")
		if err != nil {
			return err
		}
		defer rt.close()

		pg, err := rt.openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		pool := pg.PoolHandle()
		users := repository.NewUserRepository(pool)
		departments := repository.NewDepartmentRepository(pool)

		employeeService := service.NewEmployeeService(users, departments, client.NewIdentityClient(rt.cfg.Services), rt.logger)
		departmentService := service.NewDepartmentService(departments, users, rt.logger)

		deps := map[string]handlers.Pinger{"postgres": pg}
		if rt.redis.Enabled() {
			deps["redis"] = rt.redis
		}

		app := rt.newApp()
		httptransport.RegisterEmployeeRoutes(app, httptransport.EmployeeRouteConfig{
			CommonRoutes: httptransport.CommonRoutes{
				Health:  handlers.NewHealthHandler(rt.cfg.App.Name, rt.cfg.App.Version, deps),
				Metrics: rt.metrics,
			},
			Employees:      handlers.NewEmployeesHandler(employeeService, departmentService),
			Departments:    handlers.NewDepartmentsHandler(departmentService),
			AuthMiddleware: auth.NewMiddleware(rt.tokens, rt.logger, rt.metrics),
		})

		return rt.serve(app)
	},
}
