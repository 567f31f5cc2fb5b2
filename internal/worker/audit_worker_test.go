package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice/internal/config"
	"github.com/spec-kit/backoffice/internal/domain"
	"github.com/spec-kit/backoffice/internal/events"
	"github.com/spec-kit/backoffice/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryStream struct {
	mu      sync.Mutex
	stream  string
	entries []map[string]any
}

func (m *memoryStream) Enabled() bool { return true }

func (m *memoryStream) AppendStream(_ context.Context, stream string, _ int64, values map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = stream
	m.entries = append(m.entries, values)
	return nil
}

func TestAuditWorkerWritesStreamAndStops(t *testing.T) {
	stream := &memoryStream{}
	audit := service.NewAuditService(zap.NewNop(), stream, config.RedisConfig{AuditStream: "backoffice:audit"})
	dispatcher := events.NewAsyncDispatcher(8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartAuditWorker(ctx, dispatcher, audit)

	dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventUserRegistered,
		Source:  "identity",
		Actor:   events.Actor{Subject: "admin@company.com", Role: domain.RoleAdmin},
		Payload: events.UserRegisteredPayload{Email: "new@company.com", Role: domain.RoleEmployee},
	})
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("audit worker did not stop")
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()
	assert.Equal(t, "backoffice:audit", stream.stream)
	require.Len(t, stream.entries, 1)
	entry := stream.entries[0]
	assert.Equal(t, "user_registered", entry["type"])
	assert.Equal(t, "admin@company.com", entry["subject"])
	assert.JSONEq(t, `{"email":"new@company.com","role":"EMPLOYEE"}`, entry["payload"].(string))
}

func TestAuditWorkerWithoutDispatcher(t *testing.T) {
	done := StartAuditWorker(context.Background(), nil, nil)
	_, open := <-done
	assert.False(t, open)
}
