// Package event defines the closed set of events exchanged over a connection.
// Dispatch is done on typed kinds with typed payloads rather than free-form
// strings, so an unknown name can never reach a handler.
package event

import (
	json "github.com/goccy/go-json"
)

// Kind identifies one event of the wire protocol.
type Kind string

// Events accepted from connections.
const (
	KindJoinConversation     Kind = "join_conversation"
	KindLeaveConversation    Kind = "leave_conversation"
	KindSendMessage          Kind = "send_message"
	KindTypingStart          Kind = "typing_start"
	KindTypingStop           Kind = "typing_stop"
	KindMarkNotificationRead Kind = "mark_notification_read"
	KindGetUnreadCount       Kind = "get_unread_count"
	KindGetPreferences       Kind = "get_notification_preferences"
	KindUpdatePreferences    Kind = "update_notification_preferences"
	KindBroadcast            Kind = "broadcast_notification"
	KindAttendanceMarked     Kind = "attendance_marked"
)

// Events emitted to subscribed connections.
const (
	KindNewMessage              Kind = "new_message"
	KindMessagesRead            Kind = "messages_read"
	KindUserTyping              Kind = "user_typing"
	KindUserStoppedTyping       Kind = "user_stopped_typing"
	KindJoinedConversation      Kind = "joined_conversation"
	KindNotification            Kind = "notification"
	KindNotificationRead        Kind = "notification_read"
	KindUnreadCount             Kind = "unread_count"
	KindNotificationPreferences Kind = "notification_preferences"
	KindPreferencesUpdated      Kind = "preferences_updated"
	KindBroadcastSent           Kind = "broadcast_sent"
	KindError                   Kind = "error"
)

// Client-side lifecycle signals, synthesized by the connection manager and
// never sent over the wire.
const (
	KindConnected       Kind = "connected"
	KindDisconnected    Kind = "disconnected"
	KindReconnectFailed Kind = "reconnect_failed"
)

// Event is one typed payload of the protocol.
type Event interface {
	Kind() Kind
}

// Handler consumes events on the client side. Registration and removal go
// through the connection manager, keeping callers off the transport.
type Handler interface {
	Handle(e Event)
}

// Frame is the wire envelope around every payload.
type Frame struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame wraps a typed payload into its wire envelope.
func EncodeFrame(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: e.Kind(), Data: data})
}

// DecodeFrame parses the envelope only; payload decoding happens once the
// kind picked a concrete type.
func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}

// DecodePayload fills a typed payload from a frame.
func DecodePayload(f Frame, into any) error {
	if len(f.Data) == 0 {
		return nil
	}
	return json.Unmarshal(f.Data, into)
}
