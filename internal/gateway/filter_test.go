package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

func statusApp(f *Filter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(f.Handle)
	app.All("/*", func(c *fiber.Ctx) error { return c.SendString("reached") })
	return app
}

func TestFilterFirstMatchWins(t *testing.T) {
	var hits []string
	rule := func(name string, match bool, status int) Rule {
		return Rule{
			Name:  name,
			Match: func(*fiber.Ctx) bool { return match },
			Handle: func(c *fiber.Ctx) error {
				hits = append(hits, name)
				if status == 0 {
					return c.Next()
				}
				return c.SendStatus(status)
			},
		}
	}
	f := NewFilter(rule("skip", false, 0), rule("deny", true, http.StatusTeapot), rule("never", true, 0))
	assert.Equal(t, []string{"skip", "deny", "never"}, f.Rules())

	resp, err := statusApp(f).Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, []string{"deny"}, hits)
}

func TestFilterWithoutMatchingRuleRejects(t *testing.T) {
	resp, err := statusApp(NewFilter()).Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPathPrefixUsesNormalisedPath(t *testing.T) {
	f := NewFilter(
		Rule{Name: "bypass", Match: PathPrefix("/api/v1/auth/"), Handle: PassThrough},
	)
	app := statusApp(f)

	cases := map[string]int{
		"/api/v1/auth/login":                          http.StatusOK,
		"/api/v1/auth/../employees/all-employees":     http.StatusUnauthorized,
		"/api/v1/auth/%2e%2e/employees/all-employees": http.StatusUnauthorized,
		"/api/v1/employees":                           http.StatusUnauthorized,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
