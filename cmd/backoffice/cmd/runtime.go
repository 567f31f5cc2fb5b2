package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/backoffice/internal/api/http"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/events"
	"github.com/spec-kit/backoffice/internal/observability"
	"github.com/spec-kit/backoffice/internal/persistence"
	"github.com/spec-kit/backoffice/internal/service"
	"github.com/spec-kit/backoffice/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var errMissingDSN = errors.New("POSTGRES_DSN is required")

// runtime holds what every process builds before its own wiring.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	tokens     *auth.TokenManager
	redis      *persistence.Redis
	dispatcher *events.AsyncDispatcher

	stopAudit context.CancelFunc
	auditDone <-chan struct{}
}

func bootstrap(name, defaultPort string) (*runtime, error) {
	cfg, err := config.Load(name, defaultPort)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if portOverride != "" {
		cfg.App.Port = portOverride
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	logger = logger.With(zap.String("service", cfg.App.Name))

	tokens, err := auth.NewTokenManager(cfg.Auth, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("token verification configured",
		zap.String("secret_fingerprint", tokens.Fingerprint()),
		zap.Duration("token_ttl", tokens.TTL()),
	)

	redis := persistence.NewRedis(cfg.Redis, logger)
	dispatcher := events.NewAsyncDispatcher(cfg.Gateway.AuditBufferSize, func(event events.Event, err error) {
		logger.Warn("audit sink failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	})

	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditDone := worker.StartAuditWorker(auditCtx, dispatcher, service.NewAuditService(logger, redis, cfg.Redis))

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		metrics:    observability.NewMetrics(cfg.App.Name),
		tokens:     tokens,
		redis:      redis,
		dispatcher: dispatcher,
		stopAudit:  stopAudit,
		auditDone:  auditDone,
	}, nil
}

func (r *runtime) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               r.cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:  r.logger,
		Metrics: r.metrics,
		Timeout: r.cfg.App.RequestTimeout(),
	})
	return app
}

func (r *runtime) openPostgres(ctx context.Context) (*persistence.Postgres, error) {
	if r.cfg.Postgres.DSN == "" {
		return nil, errMissingDSN
	}
	pg, err := persistence.NewPostgres(ctx, r.cfg.Postgres, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	if r.cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), r.cfg.Postgres.MigrationsDir, r.logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return pg, nil
}

// serve blocks until a termination signal or a listener failure.
func (r *runtime) serve(app *fiber.App) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(r.cfg.App.Addr())
	}()
	r.logger.Info("listening", zap.String("addr", r.cfg.App.Addr()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-sigCh:
		r.logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func (r *runtime) close() {
	r.stopAudit()
	<-r.auditDone
	if dropped := r.dispatcher.Dropped(); dropped > 0 {
		r.logger.Warn("audit events dropped", zap.Int64("count", dropped))
	}
	r.redis.Close()
	_ = r.logger.Sync()
}
