package ws

import (
	"context"
	"log/slog"
	"time"

	"campushub/auth"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/errors"
	"campushub/services"
)

// Dispatcher routes one inbound frame to the right service call. The acting
// identity is always the connection's claim; payloads carry no identity
// fields at all, so a spoofed id has nowhere to go.
type Dispatcher struct {
	log           *slog.Logger
	messaging     services.IMessagingService
	notifications services.INotificationService
}

func NewDispatcher(log *slog.Logger, messaging services.IMessagingService,
	notifications services.INotificationService) *Dispatcher {
	return &Dispatcher{log: log, messaging: messaging, notifications: notifications}
}

// Dispatch decodes, validates, executes, and answers. Any failure surfaces
// only to the originating connection as an error event with a stable code.
func (d *Dispatcher) Dispatch(ctx context.Context, claim domain.Claim, sessionID string, sink *Sink, raw []byte) {
	frame, err := event.DecodeFrame(raw)
	if err != nil {
		d.reply(ctx, sink, errors.MapToWire(errors.ErrValidation))
		return
	}

	reply, err := d.handle(ctx, claim, sessionID, sink, frame)
	if err != nil {
		d.log.Info("Operation failed",
			"event", string(frame.Event), "user_id", claim.UserID, "error", err)
		d.reply(ctx, sink, errors.MapToWire(err))
		return
	}
	if reply != nil {
		d.reply(ctx, sink, reply)
	}
}

// handle returns the originator-only reply event, or nil when the operation
// answers through channel fanout alone.
func (d *Dispatcher) handle(ctx context.Context, claim domain.Claim, sessionID string, sink *Sink, frame event.Frame) (event.Event, error) {
	switch frame.Event {
	case event.KindJoinConversation:
		var cmd event.JoinConversation
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		joined, err := d.messaging.Join(ctx, claim, sessionID, cmd.ConversationID, sink)
		if err != nil {
			return nil, err
		}
		return joined, nil

	case event.KindLeaveConversation:
		var cmd event.LeaveConversation
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		d.messaging.Leave(claim, sessionID, cmd.ConversationID)
		return nil, nil

	case event.KindSendMessage:
		var cmd event.SendMessage
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		return nil, d.messaging.Send(ctx, claim, cmd)

	case event.KindTypingStart:
		var cmd event.TypingStart
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		return nil, d.messaging.TypingStart(ctx, claim, sessionID, cmd.ConversationID)

	case event.KindTypingStop:
		var cmd event.TypingStop
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		return nil, d.messaging.TypingStop(ctx, claim, sessionID, cmd.ConversationID)

	case event.KindMarkNotificationRead:
		var cmd event.MarkNotificationRead
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		return nil, d.notifications.MarkRead(ctx, claim, cmd.NotificationID)

	case event.KindGetUnreadCount:
		count, err := d.notifications.UnreadCount(claim)
		if err != nil {
			return nil, err
		}
		return count, nil

	case event.KindGetPreferences:
		prefs, err := d.notifications.GetPreferences(claim)
		if err != nil {
			return nil, err
		}
		return prefs, nil

	case event.KindUpdatePreferences:
		var cmd event.UpdatePreferences
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		updated, err := d.notifications.UpdatePreferences(claim, cmd.Patch)
		if err != nil {
			return nil, err
		}
		return updated, nil

	case event.KindBroadcast:
		var cmd event.Broadcast
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		sent, err := d.notifications.Broadcast(ctx, claim, cmd)
		if err != nil {
			return nil, err
		}
		return sent, nil

	case event.KindAttendanceMarked:
		var cmd event.AttendanceMarked
		if err := decode(frame, &cmd); err != nil {
			return nil, err
		}
		return nil, d.notifications.AttendanceMarked(ctx, claim, cmd)

	default:
		return nil, errors.ErrValidation
	}
}

// decode unmarshals and tag-validates an inbound payload.
func decode(frame event.Frame, into any) error {
	if err := event.DecodePayload(frame, into); err != nil {
		return errors.ErrValidation
	}
	return auth.ValidatePayload(into)
}

// replyTimeout bounds the wait for room in the originator's own queue, so a
// connection that stopped draining cannot stall its read pump.
const replyTimeout = 2 * time.Second

func (d *Dispatcher) reply(ctx context.Context, sink *Sink, e event.Event) {
	replyCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	if err := sink.Consume(replyCtx, e); err != nil {
		d.log.Debug("Failed to queue reply", "event", string(e.Kind()), "error", err)
	}
}
