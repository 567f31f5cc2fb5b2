package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/backoffice/internal/api/http"
	"github.com/spec-kit/backoffice/internal/api/http/handlers"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/repository"
	"github.com/spec-kit/backoffice/internal/service"
)

var identityCmd = &cobra.Command{
	Use:     "auth",
	Aliases: []string{"identity"},
	Short:   "Run the identity service",
	Long:    `Runs the service that authenticates credentials, issues tokens and registers users.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap("identity", "8081")
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		pg, err := rt.openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()

		authService := service.NewAuthService(rt.cfg.Auth, service.AuthDependencies{
			UserRepo: repository.NewUserRepository(pg.PoolHandle()),
			Tokens:   rt.tokens,
			Audit:    rt.dispatcher,
			Logger:   rt.logger,
		})
		if err := authService.SeedAdmin(ctx, rt.cfg.Auth.SeedAdminEmail, rt.cfg.Auth.SeedAdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		rt.logger.Info("admin account ensured", zap.String("email", rt.cfg.Auth.SeedAdminEmail))

		deps := map[string]handlers.Pinger{"postgres": pg}
		if rt.redis.Enabled() {
			deps["redis"] = rt.redis
		}

		app := rt.newApp()
		httptransport.RegisterIdentityRoutes(app, httptransport.IdentityRouteConfig{
			CommonRoutes: httptransport.CommonRoutes{
				Health:  handlers.NewHealthHandler(rt.cfg.App.Name, rt.cfg.App.Version, deps),
				Metrics: rt.metrics,
			},
			Auth:           handlers.NewAuthHandler(authService),
			AuthMiddleware: auth.NewMiddleware(rt.tokens, rt.logger, rt.metrics),
		})

		return rt.serve(app)
	},
}
