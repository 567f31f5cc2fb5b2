package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain", NewConflict("dup"), http.StatusConflict, CodeConflict},
		{"wrapped domain", fmt.Errorf("ctx: %w", NewAccessDenied("no")), http.StatusForbidden, CodeAccessDenied},
		{"fiber", fiber.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, CodeNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, CodeConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, CodeValidation},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		assert.Equal(t, tc.status, de.HTTPStatus, tc.name)
		assert.Equal(t, tc.code, de.Code, tc.name)
	}
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestUnauthorizedHidesCause(t *testing.T) {
	cause := errors.New("token signature invalid")
	de := ToDomainError(NewUnauthorized(cause))

	assert.Equal(t, "unauthorized", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestNewUpstreamError(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ToDomainError(NewUpstreamError(401, "x")).HTTPStatus)
	assert.Equal(t, "denied", ToDomainError(NewUpstreamError(403, "denied")).Message)
	assert.Equal(t, http.StatusConflict, ToDomainError(NewUpstreamError(409, "dup")).HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, ToDomainError(NewUpstreamError(503, "down")).HTTPStatus)
}
