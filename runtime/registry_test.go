package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campushub/domain"
	"campushub/domain/event"
	"campushub/errors"
	"campushub/observability"
)

// recordingSink keeps every consumed event for assertions.
type recordingSink struct {
	events []event.Event
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.events = append(s.events, e)
	return nil
}

type failingSink struct{}

func (failingSink) Consume(context.Context, event.Event) error {
	return fmt.Errorf("connection gone")
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.Default(), time.Second, observability.NewMonitoringManager(slog.Default()))
}

func TestRegistry_Subscribe_One_Channel_One_Session(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sessionID := uuid.NewString()
	channel := domain.ConversationChannel("conv-1")
	sink := &recordingSink{}

	// Given no session is connected
	req.Empty(registry.Sessions)
	req.Empty(registry.Members)

	// When a session subscribes a channel
	registry.Subscribe(sessionID, channel, sink)

	// Then
	req.Len(registry.Sessions, 1)
	req.Len(registry.Members, 1)
	req.Contains(registry.Members[channel], sessionID)
}

func TestRegistry_Resubscribe_Is_A_Noop(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sessionID := uuid.NewString()
	channel := domain.ConversationChannel("conv-1")
	sink := &recordingSink{}

	// When the same session subscribes twice
	registry.Subscribe(sessionID, channel, sink)
	registry.Subscribe(sessionID, channel, sink)

	// Then membership is unchanged
	req.Len(registry.Members[channel], 1)

	err := registry.Publish(context.Background(), channel, event.UserTyping{ConversationID: "conv-1"})
	req.NoError(err)
	req.Len(sink.events, 1)
}

func TestRegistry_Publish_Reaches_Every_Subscriber(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	channel := domain.OrgChannel("org-1")
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	registry.Subscribe("session-1", channel, sink1)
	registry.Subscribe("session-2", channel, sink2)

	evt := event.BroadcastSent{Recipients: 3}
	req.NoError(registry.Publish(context.Background(), channel, evt))

	req.Equal([]event.Event{evt}, sink1.events)
	req.Equal([]event.Event{evt}, sink2.events)
}

func TestRegistry_PublishExcept_Skips_The_Originator(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	channel := domain.ConversationChannel("conv-1")
	typing := &recordingSink{}
	other := &recordingSink{}

	registry.Subscribe("session-typing", channel, typing)
	registry.Subscribe("session-other", channel, other)

	evt := event.UserTyping{ConversationID: "conv-1", UserID: "alice"}
	req.NoError(registry.PublishExcept(context.Background(), channel, evt, "session-typing"))

	req.Empty(typing.events)
	req.Len(other.events, 1)
}

func TestRegistry_Failing_Sink_Does_Not_Stop_The_Sweep(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	channel := domain.ConversationChannel("conv-1")
	healthy := &recordingSink{}

	registry.Subscribe("session-broken", channel, failingSink{})
	registry.Subscribe("session-healthy", channel, healthy)

	err := registry.Publish(context.Background(), channel, event.UserTyping{ConversationID: "conv-1"})

	// Then the failure is reported and the healthy subscriber was still served
	req.ErrorIs(err, errors.ErrDelivery)
	req.Len(healthy.events, 1)
}

func TestRegistry_Publish_Feeds_The_Delivery_Counters(t *testing.T) {
	req := require.New(t)
	monitoring := observability.NewMonitoringManager(slog.Default())
	registry := NewRegistry(slog.Default(), time.Second, monitoring)
	channel := domain.ConversationChannel("conv-1")

	// Given one healthy and one broken subscriber
	registry.Subscribe("session-broken", channel, failingSink{})
	registry.Subscribe("session-healthy", channel, &recordingSink{})

	err := registry.Publish(context.Background(), channel, event.UserTyping{ConversationID: "conv-1"})
	req.ErrorIs(err, errors.ErrDelivery)

	// Then both outcomes show up in the monitoring snapshot
	stats := monitoring.GetLatest()
	req.Equal(uint64(1), stats.EventsDelivered)
	req.Equal(uint64(1), stats.DeliveryFailures)
}

func TestRegistry_Drop_Removes_Every_Membership(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	sessionID := uuid.NewString()
	sink := &recordingSink{}

	// Given a session subscribed to its fixed channels and one conversation
	registry.Subscribe(sessionID, domain.OrgChannel("org-1"), sink)
	registry.Subscribe(sessionID, domain.UserChannel("alice"), sink)
	registry.Subscribe(sessionID, domain.ConversationChannel("conv-1"), sink)

	// When the connection closes
	registry.Drop(sessionID)

	// Then nothing of it remains
	req.Empty(registry.Sessions)
	req.Empty(registry.Members)
	req.Empty(registry.Channels)
}

func TestRegistry_Tap_Observes_Every_Publish(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry()
	tap := &recordingSink{}
	registry.AddTap(tap)
	registry.Subscribe("session-1", domain.UserChannel("alice"), &recordingSink{})

	req.NoError(registry.Publish(context.Background(), domain.UserChannel("alice"), event.UnreadCount{Count: 2}))
	// A publish on an empty channel still reaches the tap
	req.NoError(registry.Publish(context.Background(), domain.UserChannel("nobody"), event.UnreadCount{Count: 0}))

	req.Len(tap.events, 2)
}
