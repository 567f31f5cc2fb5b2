package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

const (
	principalKey = "auth_principal"
	bearerPrefix = "Bearer "
)

// ErrMissingBearer covers an absent header or a scheme other than Bearer.
var ErrMissingBearer = errors.New("missing bearer token")

// Principal is the authenticated caller for the lifetime of one request.
type Principal struct {
	Claims
	// Token is the raw bearer credential, kept only for forwarding.
	Token string
}

// Verifier is the part of TokenManager the middleware depends on.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// FailureRecorder counts rejected tokens by reason.
type FailureRecorder interface {
	RecordAuthFailure(component, reason string)
}

// BearerToken extracts the credential from an Authorization header value of
// the exact form "Bearer <token>".
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingBearer
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMissingBearer
	}
	return token, nil
}

// FormatBearer builds the Authorization header value for an outbound call.
func FormatBearer(token string) string {
	return bearerPrefix + token
}

// Middleware verifies the bearer token on every protected service route,
// independently of anything the gateway already checked.
type Middleware struct {
	tokens  Verifier
	logger  *zap.Logger
	metrics FailureRecorder
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens Verifier, logger *zap.Logger, metrics FailureRecorder) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{tokens: tokens, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	principal, err := Authenticate(m.tokens, c.Get(fiber.HeaderAuthorization))
	if err != nil {
		reason := FailureReason(err)
		m.logger.Debug("token rejected",
			zap.String("path", c.Path()),
			zap.String("reason", reason),
		)
		if m.metrics != nil {
			m.metrics.RecordAuthFailure("service", reason)
		}
		return apperrors.NewUnauthorized(err)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// Authenticate parses the header and verifies the token.
func Authenticate(tokens Verifier, header string) (*Principal, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	return &Principal{Claims: claims, Token: raw}, nil
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
