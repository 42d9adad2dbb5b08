package client

import (
	"fmt"

	"campushub/domain/event"
)

// decodeServerEvent turns a wire frame into its typed payload. The set of
// accepted kinds is closed; anything else is dropped by the caller.
func decodeServerEvent(frame event.Frame) (event.Event, error) {
	var (
		e   event.Event
		err error
	)
	switch frame.Event {
	case event.KindNewMessage:
		var p event.NewMessage
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindMessagesRead:
		var p event.MessagesRead
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindUserTyping:
		var p event.UserTyping
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindUserStoppedTyping:
		var p event.UserStoppedTyping
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindJoinedConversation:
		var p event.JoinedConversation
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindNotification:
		var p event.Notification
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindNotificationRead:
		var p event.NotificationRead
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindUnreadCount:
		var p event.UnreadCount
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindNotificationPreferences:
		var p event.NotificationPreferences
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindPreferencesUpdated:
		var p event.PreferencesUpdated
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindBroadcastSent:
		var p event.BroadcastSent
		err = event.DecodePayload(frame, &p)
		e = p
	case event.KindError:
		var p event.Error
		err = event.DecodePayload(frame, &p)
		e = p
	default:
		return nil, fmt.Errorf("unknown server event %q", frame.Event)
	}
	return e, err
}
