package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"campushub/contract"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/observability"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestMonitoring() *observability.MonitoringManager {
	return observability.NewMonitoringManager(slog.Default())
}

type published struct {
	channel string
	event   event.Event
	except  string
}

// fakeRegistry records every publish so tests can assert on fanout without a
// live transport.
type fakeRegistry struct {
	mu        sync.Mutex
	subs      map[string]map[string]contract.EventSink
	published []published
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{subs: make(map[string]map[string]contract.EventSink)}
}

func (f *fakeRegistry) Subscribe(sessionID, channel string, sink contract.EventSink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[channel]; !ok {
		f.subs[channel] = make(map[string]contract.EventSink)
	}
	f.subs[channel][sessionID] = sink
}

func (f *fakeRegistry) Unsubscribe(sessionID, channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[channel], sessionID)
}

func (f *fakeRegistry) Drop(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, members := range f.subs {
		delete(members, sessionID)
	}
}

func (f *fakeRegistry) Publish(_ context.Context, channel string, e event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{channel: channel, event: e})
	return nil
}

func (f *fakeRegistry) PublishExcept(_ context.Context, channel string, e event.Event, exceptSessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{channel: channel, event: e, except: exceptSessionID})
	return nil
}

func (f *fakeRegistry) publishedOn(channel string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, p := range f.published {
		if p.channel == channel {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeRegistry) subscribed(sessionID, channel string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.subs[channel][sessionID]
	return ok
}

// recordingNotifier captures per-recipient notifications synthesized by the
// messaging engine.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *recordingNotifier) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notifications {
		out = append(out, n.RecipientID)
	}
	return out
}

// discardSink is a subscriber that accepts everything.
type discardSink struct{}

func (discardSink) Consume(context.Context, event.Event) error { return nil }
