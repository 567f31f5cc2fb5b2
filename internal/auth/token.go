package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/zeebo/blake3"

	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/domain"
)

// Verification failure kinds. Callers treat all of them as unauthenticated;
// they stay distinct for logging.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Claims is the verified projection of a token.
type Claims struct {
	Subject string
	Role    domain.Role
}

// tokenClaims is the JWT payload on the wire.
type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. It is immutable after
// construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager builds a manager from the process-wide auth configuration.
func NewTokenManager(cfg config.AuthConfig, clk clock.Clock) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, config.ErrMissingSecret
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL(),
		clock:  clk,
	}, nil
}

// Issue signs a token for the given claims. Expiry is fixed by configuration.
func (tm *TokenManager) Issue(claims Claims) (string, time.Time, error) {
	if claims.Subject == "" {
		return "", time.Time{}, errors.New("token subject required")
	}
	if !claims.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("token role %q invalid", claims.Role)
	}

	now := tm.clock.Now()
	expiresAt := now.Add(tm.ttl)
	payload := &tokenClaims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, payload.ExpiresAt.Time, nil
}

// Verify checks signature and expiry and returns fresh claims.
func (tm *TokenManager) Verify(tokenStr string) (Claims, error) {
	payload := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, payload, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.clock.Now),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}
	if payload.Subject == "" || !payload.Role.Valid() {
		return Claims{}, fmt.Errorf("%w: missing subject or unknown role", ErrMalformed)
	}
	return Claims{Subject: payload.Subject, Role: payload.Role}, nil
}

// Fingerprint returns a short digest of the secret so operators can compare
// processes from their logs.
func (tm *TokenManager) Fingerprint() string {
	sum := blake3.Sum256(append([]byte("backoffice/jwt-secret/"), tm.secret...))
	return hex.EncodeToString(sum[:6])
}

// TTL reports the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// FailureReason names a verification error for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMissingBearer):
		return "missing_bearer"
	default:
		return "malformed"
	}
}
