package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice/internal/api/dto"
	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/domain"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

const registerPath = "/api/v1/auth/register"

// IdentityClient calls the identity service with the original caller's
// bearer token. There is no service credential and no retry.
type IdentityClient struct {
	baseURL string
	timeout time.Duration
}

// NewIdentityClient builds a client for the configured identity service.
func NewIdentityClient(cfg config.ServicesConfig) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(cfg.IdentityURL, "/"),
		timeout: cfg.ClientTimeout,
	}
}

// RegisterUser forwards a registration. Any non-success answer, including the
// callee's own 401/403, fails the call.
func (c *IdentityClient) RegisterUser(ctx context.Context, bearer string, req dto.RegisterRequest) (*domain.User, error) {
	if bearer == "" {
		return nil, apperrors.NewUnauthorized(auth.ErrMissingBearer)
	}
	if err := ctx.Err(); err != nil {
		return nil, upstreamFailure(err)
	}

	agent := fiber.Post(c.baseURL + registerPath)
	agent.Set(fiber.HeaderAuthorization, auth.FormatBearer(bearer))
	agent.JSON(req)
	if timeout := c.timeoutFor(ctx); timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, upstreamFailure(err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, upstreamFailure(errors.Join(errs...))
	}

	if status != http.StatusCreated && status != http.StatusOK {
		var envelope dto.ErrorResponse
		_ = json.Unmarshal(body, &envelope)
		return nil, apperrors.NewUpstreamError(status, envelope.Message)
	}

	var resp dto.APIResponse[dto.UserResponse]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, upstreamFailure(fmt.Errorf("decode register response: %w", err))
	}
	return userFromResponse(resp.Data), nil
}

func (c *IdentityClient) timeoutFor(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func upstreamFailure(err error) error {
	return &apperrors.DomainError{
		Code:       apperrors.CodeUpstream,
		Message:    "upstream service failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func userFromResponse(u dto.UserResponse) *domain.User {
	user := &domain.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         domain.Role(u.Role),
		DepartmentID: u.DepartmentID,
		Status:       domain.UserStatus(u.Status),
	}
	if u.CreatedAt != nil {
		user.CreatedAt = *u.CreatedAt
	}
	return user
}
