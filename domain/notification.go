package domain

import "time"

type NotificationType string

const (
	NotificationMessage      NotificationType = "message"
	NotificationAttendance   NotificationType = "attendance"
	NotificationAnnouncement NotificationType = "announcement"
)

// Priority is advisory metadata for the display layer. It never affects
// delivery order or channel choice in this subsystem.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is a durable per-recipient record. A broadcast produces one
// row per resolved recipient, never one row shared by the audience.
type Notification struct {
	ID          string            `json:"id"`
	OrgID       string            `json:"org_id"`
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Type        NotificationType  `json:"type"`
	Priority    Priority          `json:"priority"`
	Read        bool              `json:"read"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
