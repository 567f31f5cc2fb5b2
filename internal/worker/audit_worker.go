package worker

import (
	"context"

	"github.com/spec-kit/backoffice/internal/events"
	"github.com/spec-kit/backoffice/internal/service"
)

// StartAuditWorker registers audit handlers and drains the dispatcher in the
// background. The returned channel closes once the worker has flushed after
// ctx is cancelled.
func StartAuditWorker(ctx context.Context, dispatcher *events.AsyncDispatcher, audit *service.AuditService) <-chan struct{} {
	done := make(chan struct{})
	if dispatcher == nil {
		close(done)
		return done
	}
	if audit != nil {
		audit.RegisterHandlers(dispatcher)
	}
	go func() {
		defer close(done)
		dispatcher.Run(ctx)
	}()
	return done
}
