package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/events"
)

const auditStreamMaxLen = 100_000

// StreamAppender is the Redis capability the audit sink needs.
type StreamAppender interface {
	Enabled() bool
	AppendStream(ctx context.Context, stream string, maxLen int64, values map[string]any) error
}

// AuditService writes audit events to the log and, when configured, to a Redis stream.
type AuditService struct {
	logger *zap.Logger
	stream StreamAppender
	cfg    config.RedisConfig
}

// NewAuditService creates the service. stream may be nil.
func NewAuditService(logger *zap.Logger, stream StreamAppender, cfg config.RedisConfig) *AuditService {
	return &AuditService{logger: logger, stream: stream, cfg: cfg}
}

// RegisterHandlers subscribes to every audit event type.
func (a *AuditService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventRequestAuthenticated,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventUserRegistered,
		events.EventAccessDenied,
	} {
		dispatcher.Subscribe(t, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("source", event.Source),
		zap.String("subject", event.Actor.Subject),
		zap.String("role", string(event.Actor.Role)),
		zap.String("method", event.Method),
		zap.String("path", event.Path),
	)
	return a.appendToStream(ctx, event)
}

func (a *AuditService) appendToStream(ctx context.Context, event events.Event) error {
	if a.stream == nil || !a.stream.Enabled() {
		return nil
	}
	values := map[string]any{
		"id":        event.ID,
		"type":      string(event.Type),
		"source":    event.Source,
		"subject":   event.Actor.Subject,
		"role":      string(event.Actor.Role),
		"method":    event.Method,
		"path":      event.Path,
		"timestamp": event.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if event.Payload != nil {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return err
		}
		values["payload"] = string(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.stream.AppendStream(ctx, a.cfg.AuditStream, auditStreamMaxLen, values)
}
