package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice/internal/api/dto"
	httptransport "github.com/spec-kit/backoffice/internal/api/http"
	"github.com/spec-kit/backoffice/internal/api/http/handlers"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/events"
	"github.com/spec-kit/backoffice/internal/gateway"
	"github.com/spec-kit/backoffice/internal/observability"
)

type seenRequest struct {
	Path          string
	Authorization string
}

type upstream struct {
	*httptest.Server
	mu   sync.Mutex
	seen []seenRequest
}

func newUpstream(t *testing.T, name string) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.seen = append(u.seen, seenRequest{Path: r.URL.Path, Authorization: r.Header.Get("Authorization")})
		u.mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/forbidden") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"message":"access denied"}`)
			return
		}
		_, _ = io.WriteString(w, name+":"+r.URL.Path)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) requests() []seenRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]seenRequest(nil), u.seen...)
}

type auditLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (a *auditLog) Publish(_ context.Context, e events.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return true
}

func (a *auditLog) Subscribe(events.EventType, events.EventHandler) {}

type fixture struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	identity *upstream
	employee *upstream
	audit    *auditLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "gateway-test-secret-0123456789abcdef"}, nil)
	require.NoError(t, err)

	identity := newUpstream(t, "identity")
	employee := newUpstream(t, "employee")
	audit := &auditLog{}
	metrics := observability.NewMetrics("gateway-test")

	gw := config.GatewayConfig{
		IdentityUpstream: identity.URL,
		EmployeeUpstream: employee.URL,
		BypassPrefixes:   config.DefaultBypassPrefixes,
	}
	guard := gateway.NewBearerGuard(tokens, audit, nil, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{Metrics: metrics})
	httptransport.RegisterGatewayRoutes(app, httptransport.GatewayRouteConfig{
		CommonRoutes: httptransport.CommonRoutes{
			Health:  handlers.NewHealthHandler("gateway", "test", nil),
			Metrics: metrics,
		},
		Filter: gateway.NewFilter(gateway.DefaultRules(gw.BypassPrefixes, guard)...),
		Proxy:  gateway.NewProxy(gateway.DefaultRoutes(gw), 5*time.Second),
	})
	return &fixture{app: app, tokens: tokens, identity: identity, employee: employee, audit: audit}
}

func (f *fixture) do(t *testing.T, method, path, authorization string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := f.app.Test(req, 10_000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (f *fixture) bearer(t *testing.T, subject string, role domain.Role) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Claims{Subject: subject, Role: role})
	require.NoError(t, err)
	return auth.FormatBearer(token)
}

func TestBypassPrefixReachesIdentityWithoutToken(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/auth/login", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "identity:/api/v1/auth/login", body)
	assert.Empty(t, f.audit.events)
}

func TestMissingOrInvalidTokenNeverReachesUpstream(t *testing.T) {
	f := newFixture(t)

	for _, header := range []string{"", "Basic abc", "Bearer forged.token.value"} {
		resp, body := f.do(t, http.MethodGet, "/api/v1/employees/all-employees", header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)

		var envelope dto.ErrorResponse
		require.NoError(t, json.Unmarshal([]byte(body), &envelope))
		assert.Equal(t, "unauthorized", envelope.Message)
		assert.Equal(t, "/api/v1/employees/all-employees", envelope.Path)
		_, err := time.Parse(time.RFC3339, envelope.Timestamp)
		assert.NoError(t, err)
	}
	assert.Empty(t, f.employee.requests())
}

func TestTraversalOutOfBypassPrefixNeedsToken(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/auth/../employees/all-employees", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.identity.requests())
	assert.Empty(t, f.employee.requests())
}

func TestValidTokenForwardedUnchanged(t *testing.T) {
	f := newFixture(t)
	bearer := f.bearer(t, "emp@company.com", domain.RoleEmployee)

	resp, body := f.do(t, http.MethodGet, "/api/v1/employees/me", bearer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "employee:/api/v1/employees/me", body)

	seen := f.employee.requests()
	require.Len(t, seen, 1)
	assert.Equal(t, bearer, seen[0].Authorization)

	require.Len(t, f.audit.events, 1)
	assert.Equal(t, events.EventRequestAuthenticated, f.audit.events[0].Type)
	assert.Equal(t, "emp@company.com", f.audit.events[0].Actor.Subject)
}

func TestGatewayDoesNotAuthorizeRoles(t *testing.T) {
	f := newFixture(t)

	// an EMPLOYEE token on an ADMIN route is the service's decision to make
	resp, _ := f.do(t, http.MethodGet, "/api/v1/departments", f.bearer(t, "emp@company.com", domain.RoleEmployee))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.employee.requests(), 1)
}

func TestUpstreamRejectionPassesThrough(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/v1/departments/forbidden", f.bearer(t, "m@company.com", domain.RoleManager))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"message":"access denied"}`, body)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/payroll", f.bearer(t, "a@company.com", domain.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGatewayProbesAnswerLocally(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "backoffice_http_requests_total")
}

func TestUpstreamPinger(t *testing.T) {
	up := newUpstream(t, "identity")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, gateway.UpstreamPinger{URL: up.URL}.Ping(ctx))
	assert.Error(t, gateway.UpstreamPinger{URL: "http://127.0.0.1:1"}.Ping(ctx))
}

func TestAuditEventKeepsRequestAfterBufferReuse(t *testing.T) {
	f := newFixture(t)
	bearer := f.bearer(t, "admin@company.com", domain.RoleAdmin)

	f.do(t, http.MethodGet, "/api/v1/employees/all-employees", bearer)
	f.do(t, http.MethodDelete, "/api/v1/departments/99", bearer)

	require.Len(t, f.audit.events, 2)
	assert.Equal(t, http.MethodGet, f.audit.events[0].Method)
	assert.Equal(t, "/api/v1/employees/all-employees", f.audit.events[0].Path)
	assert.Equal(t, http.MethodDelete, f.audit.events[1].Method)
	assert.Equal(t, "/api/v1/departments/99", f.audit.events[1].Path)
}
