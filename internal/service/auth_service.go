package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/auth"
	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/events"
	"github.com/spec-kit/backoffice/internal/repository"
	apperrors "github.com/spec-kit/backoffice/pkg/util"
)

const auditSourceIdentity = "identity"

// TokenIssuer is the part of TokenManager the identity service needs.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, time.Time, error)
}

// LoginResult is returned for an authenticated login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// RegisterInput describes a user to provision.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Role         string
	DepartmentID *int64
	Status       string
}

// AuthService coordinates login and registration flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	audit      events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   TokenIssuer
	Audit    events.Dispatcher
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	if deps.Audit == nil {
		deps.Audit = events.NopDispatcher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		audit:      deps.Audit,
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates by email and password. Unknown email and wrong
// password fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	s.logger.Info("login attempt", zap.String("email", email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(err)
		}
		auth.BurnComparison(password, s.bcryptCost)
		return nil, s.rejectLogin(ctx, email, "unknown_email")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.rejectLogin(ctx, email, "wrong_password")
	}

	token, exp, err := s.tokens.Issue(auth.Claims{Subject: user.Email, Role: user.Role})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.audit.Publish(ctx, events.Event{
		Type:   events.EventLoginSucceeded,
		Source: auditSourceIdentity,
		Actor:  events.Actor{Subject: user.Email, Role: user.Role},
	})
	s.logger.Info("login succeeded", zap.String("email", user.Email))

	sanitized := *user
	sanitized.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: exp, User: &sanitized}, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, email, reason string) error {
	s.logger.Warn("login failed", zap.String("email", email), zap.String("reason", reason))
	s.audit.Publish(ctx, events.Event{
		Type:   events.EventLoginFailed,
		Source: auditSourceIdentity,
		Actor:  events.Actor{Subject: email},
	})
	return apperrors.NewInvalidCredentials()
}

// Register provisions a new user. Only a caller whose token carries the
// ADMIN role may do so; the caller's role never comes from the request body.
func (s *AuthService) Register(ctx context.Context, caller auth.Claims, in RegisterInput) (*domain.User, error) {
	if err := auth.Authorize(caller, domain.RoleAdmin); err != nil {
		s.audit.Publish(ctx, events.Event{
			Type:   events.EventAccessDenied,
			Source: auditSourceIdentity,
			Actor:  events.Actor{Subject: caller.Subject, Role: caller.Role},
			Path:   "register",
		})
		return nil, apperrors.NewAccessDenied("access denied: only ADMIN can perform this action")
	}

	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("email already exists")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		Source:  auditSourceIdentity,
		Actor:   events.Actor{Subject: caller.Subject, Role: caller.Role},
		Payload: events.UserRegisteredPayload{Email: user.Email, Role: user.Role},
	})
	s.logger.Info("user registered", zap.String("email", user.Email), zap.String("by", caller.Subject))

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) buildUser(in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperrors.NewValidationError("valid email required")
	}
	if in.Password == "" {
		return nil, apperrors.NewValidationError("password required")
	}

	role := domain.RoleEmployee
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		role = parsed
	}

	status := domain.UserStatusActive
	if in.Status != "" {
		status = domain.UserStatus(strings.ToUpper(in.Status))
	}

	return &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Role:         role,
		DepartmentID: in.DepartmentID,
		Status:       status,
	}, nil
}

// SeedAdmin creates the bootstrap administrator when it does not exist yet.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		s.logger.Info("admin user already exists; skipping seeding", zap.String("email", email))
		return nil
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin user seeded", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
