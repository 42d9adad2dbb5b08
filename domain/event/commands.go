package event

import (
	"campushub/domain"
)

// Inbound payloads. Identity fields are deliberately absent: the acting
// user always comes from the connection's claim, never from a payload.

type JoinConversation struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

func (JoinConversation) Kind() Kind { return KindJoinConversation }

type LeaveConversation struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

func (LeaveConversation) Kind() Kind { return KindLeaveConversation }

type SendMessage struct {
	ConversationID string             `json:"conversation_id" validate:"required"`
	Type           domain.MessageType `json:"type" validate:"required,oneof=text file"`
	Content        string             `json:"content"`
	FileURL        string             `json:"file_url,omitempty"`
	FileName       string             `json:"file_name,omitempty"`
	FileSize       int64              `json:"file_size,omitempty"`
}

func (SendMessage) Kind() Kind { return KindSendMessage }

type TypingStart struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

func (TypingStart) Kind() Kind { return KindTypingStart }

type TypingStop struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

func (TypingStop) Kind() Kind { return KindTypingStop }

type MarkNotificationRead struct {
	NotificationID string `json:"notification_id" validate:"required"`
}

func (MarkNotificationRead) Kind() Kind { return KindMarkNotificationRead }

type GetUnreadCount struct{}

func (GetUnreadCount) Kind() Kind { return KindGetUnreadCount }

type GetPreferences struct{}

func (GetPreferences) Kind() Kind { return KindGetPreferences }

type UpdatePreferences struct {
	Patch domain.PreferencePatch `json:"patch"`
}

func (UpdatePreferences) Kind() Kind { return KindUpdatePreferences }

type Broadcast struct {
	Title          string            `json:"title" validate:"required"`
	Message        string            `json:"message" validate:"required"`
	TargetAudience []domain.Audience `json:"target_audience" validate:"required,min=1,dive,oneof=all teachers parents students"`
	Priority       domain.Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (Broadcast) Kind() Kind { return KindBroadcast }

// AttendanceMarked is the single-recipient notify convenience used by the
// external attendance workflow: it alerts the student's guardian.
type AttendanceMarked struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

func (AttendanceMarked) Kind() Kind { return KindAttendanceMarked }
