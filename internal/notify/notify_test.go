package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/events"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func sample() Notification {
	return Notification{
		Kind:      KindOverdueTasks,
		Subject:   "Geciken görevler",
		Items:     []Item{{ID: 1, Title: "Call back"}},
		CreatedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), sample()))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "overdue_tasks", fields["kind"])
	assert.Equal(t, int64(1), fields["items"])
}

func TestEventNotifier(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewEventNotifier(pub)

	require.NoError(t, n.Notify(context.Background(), sample()))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeNotification, pub.events[0].Type)
	assert.Equal(t, "overdue_tasks", pub.events[0].Key)

	var payload Notification
	require.NoError(t, json.Unmarshal(pub.events[0].Payload, &payload))
	assert.Equal(t, "Call back", payload.Items[0].Title)
}

func TestFanout(t *testing.T) {
	failing := NewEventNotifier(&recordingPublisher{err: errors.New("down")})
	ok := &recordingPublisher{}

	err := Fanout{failing, NewEventNotifier(ok)}.Notify(context.Background(), sample())
	assert.EqualError(t, err, "down")
	assert.Len(t, ok.events, 1)
}
