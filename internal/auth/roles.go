package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice/internal/domain"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

// ErrAccessDenied means the caller is authenticated but not permitted.
var ErrAccessDenied = errors.New("access denied")

// Authorize permits the call only when the token role equals required.
// Roles do not inherit from each other.
func Authorize(claims Claims, required domain.Role) error {
	if claims.Role != required {
		return ErrAccessDenied
	}
	return nil
}

// AuthorizeOwner permits the call only when the caller is the resource owner.
func AuthorizeOwner(claims Claims, ownerSubject string) error {
	if ownerSubject == "" || !strings.EqualFold(claims.Subject, ownerSubject) {
		return ErrAccessDenied
	}
	return nil
}

// RequireRole rejects principals whose token role is not exactly role.
func RequireRole(role domain.Role) fiber.Handler {
	message := "access denied: only " + string(role) + " can perform this action"
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(ErrMissingBearer)
		}
		if err := Authorize(principal.Claims, role); err != nil {
			return apperrors.NewAccessDenied(message)
		}
		return c.Next()
	}
}

// RequireAuthenticated only checks that the middleware produced a principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized(ErrMissingBearer)
		}
		return c.Next()
	}
}

// RequireOwner resolves the owner of the addressed resource and rejects
// callers whose subject does not match it. Resolver errors pass through.
func RequireOwner(owner func(c *fiber.Ctx) (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(ErrMissingBearer)
		}
		subject, err := owner(c)
		if err != nil {
			return err
		}
		if err := AuthorizeOwner(principal.Claims, subject); err != nil {
			return apperrors.NewAccessDenied("access denied: caller does not own this resource")
		}
		return c.Next()
	}
}
