package events

import (
	"time"

	"github.com/spec-kit/backoffice/internal/domain"
)

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventRequestAuthenticated EventType = "request_authenticated"
	EventLoginSucceeded       EventType = "login_succeeded"
	EventLoginFailed          EventType = "login_failed"
	EventUserRegistered       EventType = "user_registered"
	EventAccessDenied         EventType = "access_denied"
)

// Actor is the caller an event is attributed to.
type Actor struct {
	Subject string      `json:"subject"`
	Role    domain.Role `json:"role,omitempty"`
}

// Event represents an audit record emitted by a component.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Actor     Actor     `json:"actor"`
	Method    string    `json:"method,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
