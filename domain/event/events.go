package event

import (
	"time"

	"campushub/domain"
)

// Outbound payloads. One struct per kind keeps the dispatch table closed.

type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (NewMessage) Kind() Kind { return KindNewMessage }

type MessagesRead struct {
	ConversationID string    `json:"conversation_id"`
	ReaderID       string    `json:"reader_id"`
	MessageIDs     []string  `json:"message_ids"`
	At             time.Time `json:"at"`
}

func (MessagesRead) Kind() Kind { return KindMessagesRead }

type UserTyping struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

func (UserTyping) Kind() Kind { return KindUserTyping }

type UserStoppedTyping struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

func (UserStoppedTyping) Kind() Kind { return KindUserStoppedTyping }

type JoinedConversation struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

func (JoinedConversation) Kind() Kind { return KindJoinedConversation }

type Notification struct {
	Notification domain.Notification `json:"notification"`
}

func (Notification) Kind() Kind { return KindNotification }

type NotificationRead struct {
	NotificationID string    `json:"notification_id"`
	ReadAt         time.Time `json:"read_at"`
}

func (NotificationRead) Kind() Kind { return KindNotificationRead }

type UnreadCount struct {
	Count int64 `json:"count"`
}

func (UnreadCount) Kind() Kind { return KindUnreadCount }

type NotificationPreferences struct {
	Preferences domain.NotificationPreference `json:"preferences"`
}

func (NotificationPreferences) Kind() Kind { return KindNotificationPreferences }

type PreferencesUpdated struct {
	Preferences domain.NotificationPreference `json:"preferences"`
}

func (PreferencesUpdated) Kind() Kind { return KindPreferencesUpdated }

type BroadcastSent struct {
	Recipients int `json:"recipients"`
}

func (BroadcastSent) Kind() Kind { return KindBroadcastSent }

// Error carries a stable code and message. Internal store errors never
// travel through here; see errors.MapToWire.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Error) Kind() Kind { return KindError }

// Client lifecycle signals.

type Connected struct{}

func (Connected) Kind() Kind { return KindConnected }

type Disconnected struct {
	Reason string `json:"reason"`
}

func (Disconnected) Kind() Kind { return KindDisconnected }

type ReconnectFailed struct {
	Attempts int `json:"attempts"`
}

func (ReconnectFailed) Kind() Kind { return KindReconnectFailed }
