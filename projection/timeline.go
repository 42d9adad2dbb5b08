// Package projection builds local read models from observed events.
// Handles ordering and capping; does not emit events itself.
package projection

import (
	"context"
	"sync"

	"campushub/domain/event"
)

// Entry is one observed event kept for the debug surface.
type Entry struct {
	Kind    event.Kind `json:"kind"`
	Channel string     `json:"channel,omitempty"`
	Actor   string     `json:"actor,omitempty"`
	Summary string     `json:"summary,omitempty"`
	At      string     `json:"at"`
}

// Timeline is a registry tap holding the most recent published events,
// newest first. It backs the debug server's activity view.
type Timeline struct {
	mu      sync.Mutex
	cap     int
	entries []Entry
}

func NewTimeline(capacity int) *Timeline {
	return &Timeline{cap: capacity}
}

// Consume implements contract.EventSink so the timeline can be attached as
// a registry tap. It never fails; a projection must not disturb delivery.
func (t *Timeline) Consume(_ context.Context, e event.Event) error {
	entry := fromEvent(e)
	if entry == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append([]Entry{*entry}, t.entries...)
	if len(t.entries) > t.cap {
		t.entries = t.entries[:t.cap]
	}
	return nil
}

// Recent returns a copy of the retained entries, newest first.
func (t *Timeline) Recent() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func fromEvent(e event.Event) *Entry {
	switch evt := e.(type) {
	case event.NewMessage:
		return &Entry{
			Kind:    evt.Kind(),
			Channel: "conv:" + evt.Message.ConversationID,
			Actor:   evt.Message.SenderID,
			Summary: evt.Message.Content,
			At:      evt.Message.CreatedAt.Format("15:04:05"),
		}
	case event.Notification:
		return &Entry{
			Kind:    evt.Kind(),
			Channel: "user:" + evt.Notification.RecipientID,
			Summary: evt.Notification.Title,
			At:      evt.Notification.CreatedAt.Format("15:04:05"),
		}
	case event.MessagesRead:
		return &Entry{
			Kind:    evt.Kind(),
			Channel: "conv:" + evt.ConversationID,
			Actor:   evt.ReaderID,
			At:      evt.At.Format("15:04:05"),
		}
	default:
		// Typing and the other transient signals are not worth retaining.
		return nil
	}
}
