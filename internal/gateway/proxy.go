package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/backoffice/internal/config"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// Route maps a path prefix to an upstream base URL.
type Route struct {
	Prefix   string
	Upstream string
}

// DefaultRoutes maps the public API onto the two services.
func DefaultRoutes(cfg config.GatewayConfig) []Route {
	return []Route{
		{Prefix: "/api/v1/auth/", Upstream: cfg.IdentityUpstream},
		{Prefix: "/auth/v3/api-docs", Upstream: cfg.IdentityUpstream},
		{Prefix: "/api/v1/employees", Upstream: cfg.EmployeeUpstream},
		{Prefix: "/api/v1/departments", Upstream: cfg.EmployeeUpstream},
		{Prefix: "/employee/v3/api-docs", Upstream: cfg.EmployeeUpstream},
	}
}

// Proxy forwards requests to the first route whose prefix matches.
type Proxy struct {
	routes []Route
	client *fasthttp.Client
}

// NewProxy builds a proxy with a shared upstream client.
func NewProxy(routes []Route, timeout time.Duration) *Proxy {
	normalized := make([]Route, 0, len(routes))
	for _, r := range routes {
		normalized = append(normalized, Route{Prefix: r.Prefix, Upstream: strings.TrimRight(r.Upstream, "/")})
	}
	return &Proxy{
		routes: normalized,
		client: &fasthttp.Client{
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			NoDefaultUserAgentHeader: true,
			DisablePathNormalizing:   true,
		},
	}
}

// Handle forwards the request unchanged, Authorization header included.
func (p *Proxy) Handle(c *fiber.Ctx) error {
	path := RequestPath(c)
	for _, route := range p.routes {
		if strings.HasPrefix(path, route.Prefix) {
			if err := proxy.Do(c, route.Upstream+c.OriginalURL(), p.client); err != nil {
				return &apperrors.DomainError{
					Code:       apperrors.CodeUpstream,
					Message:    "upstream service unavailable",
					HTTPStatus: http.StatusBadGateway,
					Err:        fmt.Errorf("proxy %s: %w", route.Upstream, err),
				}
			}
			return nil
		}
	}
	return apperrors.NewNotFound("route")
}

// UpstreamPinger checks an upstream's liveness endpoint for readiness probes.
type UpstreamPinger struct {
	URL string
}

// Ping issues GET {URL}/health/live.
func (u UpstreamPinger) Ping(ctx context.Context) error {
	agent := fiber.Get(strings.TrimRight(u.URL, "/") + "/health/live")
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}
	if err := agent.Parse(); err != nil {
		return err
	}
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d", status)
	}
	return nil
}
