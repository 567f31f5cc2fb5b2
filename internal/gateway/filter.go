package gateway

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/events"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

const auditSourceGateway = "gateway"

var errNoRule = errors.New("no filter rule matched")

// Rule pairs a request predicate with the handler run when it matches.
type Rule struct {
	Name   string
	Match  func(c *fiber.Ctx) bool
	Handle fiber.Handler
}

// Filter evaluates its rules in order for every inbound request; the first
// matching rule decides. A request no rule matches is rejected.
type Filter struct {
	rules []Rule
}

// NewFilter builds a filter from an ordered rule list.
func NewFilter(rules ...Rule) *Filter {
	return &Filter{rules: append([]Rule(nil), rules...)}
}

// Handle is the fiber middleware entry point.
func (f *Filter) Handle(c *fiber.Ctx) error {
	for _, rule := range f.rules {
		if rule.Match(c) {
			return rule.Handle(c)
		}
	}
	return apperrors.NewUnauthorized(errNoRule)
}

// Rules returns the configured rule names in evaluation order.
func (f *Filter) Rules() []string {
	names := make([]string, 0, len(f.rules))
	for _, rule := range f.rules {
		names = append(names, rule.Name)
	}
	return names
}

// PathPrefix matches requests whose normalised path starts with any prefix.
func PathPrefix(prefixes ...string) func(c *fiber.Ctx) bool {
	prefixes = append([]string(nil), prefixes...)
	return func(c *fiber.Ctx) bool {
		path := RequestPath(c)
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// Always matches every request.
func Always(*fiber.Ctx) bool { return true }

// PassThrough forwards the request untouched.
func PassThrough(c *fiber.Ctx) error { return c.Next() }

// RequestPath is the decoded path with dot segments resolved, so prefix
// checks cannot be sidestepped with "..".
func RequestPath(c *fiber.Ctx) string {
	return string(c.Request().URI().Path())
}

// FailureRecorder counts rejected tokens.
type FailureRecorder = auth.FailureRecorder

// BearerGuard requires a valid bearer token and otherwise leaves the request
// as it is, Authorization header included.
type BearerGuard struct {
	tokens  auth.Verifier
	audit   events.Dispatcher
	logger  *zap.Logger
	metrics FailureRecorder
}

// NewBearerGuard constructs the guard. audit and metrics may be nil.
func NewBearerGuard(tokens auth.Verifier, audit events.Dispatcher, logger *zap.Logger, metrics FailureRecorder) *BearerGuard {
	if audit == nil {
		audit = events.NopDispatcher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BearerGuard{tokens: tokens, audit: audit, logger: logger, metrics: metrics}
}

// Handle rejects before any upstream call when the token is missing or bad.
func (g *BearerGuard) Handle(c *fiber.Ctx) error {
	principal, err := auth.Authenticate(g.tokens, c.Get(fiber.HeaderAuthorization))
	if err != nil {
		reason := auth.FailureReason(err)
		g.logger.Debug("gateway rejected request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("reason", reason),
		)
		if g.metrics != nil {
			g.metrics.RecordAuthFailure(auditSourceGateway, reason)
		}
		return apperrors.NewUnauthorized(err)
	}

	if !g.audit.Publish(c.UserContext(), events.Event{
		Type:   events.EventRequestAuthenticated,
		Source: auditSourceGateway,
		Actor:  events.Actor{Subject: principal.Subject, Role: principal.Role},
		// the dispatcher reads these after the request buffer is reused
		Method: utils.CopyString(c.Method()),
		Path:   utils.CopyString(c.Path()),
	}) {
		g.logger.Debug("audit buffer full; event dropped", zap.String("subject", principal.Subject))
	}
	return c.Next()
}

// DefaultRules is the standard edge policy: allow-listed prefixes bypass
// authentication, everything else needs a valid bearer token.
func DefaultRules(bypassPrefixes []string, guard *BearerGuard) []Rule {
	return []Rule{
		{Name: "bypass", Match: PathPrefix(bypassPrefixes...), Handle: PassThrough},
		{Name: "bearer", Match: Always, Handle: guard.Handle},
	}
}
