// Package runtime owns the in-memory channel registry and the supervised
// background workers. It contains no business rules; services decide what to
// publish, the registry decides who is listening right now.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campushub/contract"
	"campushub/domain/event"
	"campushub/errors"
	"campushub/observability"
)

type Set map[string]struct{}

// Registry maps namespaced channel names (org:*, user:*, conv:*) to the
// sessions currently subscribed to them. It lives exactly as long as the
// server process; nothing in it is persisted.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sinkTimeout time.Duration
	monitoring  *observability.MonitoringManager
	Sessions    map[string]contract.EventSink // session id -> outbound sink
	Members     map[string]Set                // channel name -> session ids
	Channels    map[string]Set                // session id -> channel names, for Drop
	taps        []contract.EventSink          // observers of every published event
}

func NewRegistry(log *slog.Logger, sinkTimeout time.Duration, monitoring *observability.MonitoringManager) *Registry {
	return &Registry{
		log:         log,
		sinkTimeout: sinkTimeout,
		monitoring:  monitoring,
		Sessions:    make(map[string]contract.EventSink),
		Members:     make(map[string]Set),
		Channels:    make(map[string]Set),
	}
}

// AddTap registers a permanent sink observing every published event,
// regardless of channel. Used for projections, indexing, and counters.
func (r *Registry) AddTap(sinks ...contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taps = append(r.taps, sinks...)
}

// Subscribe registers a session's sink on a channel. Re-subscribing an
// already subscribed session is a no-op, which keeps joinConversation
// idempotent on the registry side.
func (r *Registry) Subscribe(sessionID, channel string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[sessionID] = sink

	if _, ok := r.Members[channel]; !ok {
		r.Members[channel] = make(Set)
	}
	r.Members[channel][sessionID] = struct{}{}

	if _, ok := r.Channels[sessionID]; !ok {
		r.Channels[sessionID] = make(Set)
	}
	r.Channels[sessionID][channel] = struct{}{}
}

// Unsubscribe removes a session from one channel, cleaning up empty sets so
// long-lived processes don't accumulate dead channel entries.
func (r *Registry) Unsubscribe(sessionID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeMember(sessionID, channel)
}

// Drop removes a session from every channel it belongs to and forgets its
// sink. Called on disconnect; channel membership never outlives a connection.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channel := range r.Channels[sessionID] {
		r.removeMember(sessionID, channel)
	}
	delete(r.Channels, sessionID)
	delete(r.Sessions, sessionID)
}

// removeMember must run under the write lock.
func (r *Registry) removeMember(sessionID, channel string) {
	if members, ok := r.Members[channel]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.Members, channel)
		}
	}
	if channels, ok := r.Channels[sessionID]; ok {
		delete(channels, channel)
	}
}

// Publish delivers an event to every session currently subscribed to the
// channel. Delivery is best effort and all-attempted: a failing sink is
// logged and counted, the sweep continues.
func (r *Registry) Publish(ctx context.Context, channel string, e event.Event) error {
	return r.publish(ctx, channel, e, "")
}

// PublishExcept behaves like Publish but skips one session, typically the
// originator of a typing or read signal.
func (r *Registry) PublishExcept(ctx context.Context, channel string, e event.Event, exceptSessionID string) error {
	return r.publish(ctx, channel, e, exceptSessionID)
}

func (r *Registry) publish(ctx context.Context, channel string, e event.Event, except string) error {
	type target struct {
		sessionID string
		sink      contract.EventSink
	}

	r.mu.RLock()
	var targets []target
	for sessionID := range r.Members[channel] {
		if sessionID == except {
			continue
		}
		if sink, ok := r.Sessions[sessionID]; ok {
			targets = append(targets, target{sessionID: sessionID, sink: sink})
		}
	}
	taps := r.taps
	r.mu.RUnlock()

	failed := 0
	for _, t := range targets {
		if err := r.consume(ctx, t.sink, e); err != nil {
			failed++
			r.log.Warn("Delivery to subscriber failed",
				"channel", channel, "session_id", t.sessionID,
				"event", string(e.Kind()), "error", err)
		}
	}

	if delivered := len(targets) - failed; delivered > 0 {
		r.monitoring.IncrEventsDelivered(uint64(delivered))
	}
	if failed > 0 {
		r.monitoring.IncrDeliveryFailures(uint64(failed))
	}

	for _, tap := range taps {
		if err := r.consume(ctx, tap, e); err != nil {
			r.log.Debug("Tap lost an event", "event", string(e.Kind()), "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d subscribers on %s",
			errors.ErrDelivery, failed, len(targets), channel)
	}
	return nil
}

func (r *Registry) consume(ctx context.Context, sink contract.EventSink, e event.Event) error {
	sinkCtx, cancel := context.WithTimeout(ctx, r.sinkTimeout)
	defer cancel()
	return sink.Consume(sinkCtx, e)
}
