package domain

import (
	"time"

	"github.com/samber/lo"
)

type ConversationType string

const (
	// ConversationDirect restricts posting to the listed participants.
	ConversationDirect ConversationType = "direct"
	// ConversationGroup is a broadcast-style room anyone in the organization may post to.
	ConversationGroup ConversationType = "group"
)

// Conversation is a durable record created by the host application.
// This subsystem only ever mutates LastMessageAt.
type Conversation struct {
	ID            string           `json:"id"`
	OrgID         string           `json:"org_id"`
	Type          ConversationType `json:"type"`
	Participants  []string         `json:"participants"`
	LastMessageAt time.Time        `json:"last_message_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

// HasParticipant reports whether the user is listed in the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return lo.Contains(c.Participants, userID)
}

// Accessible reports whether the claim may join or post.
// Group conversations are open to the whole organization.
func (c Conversation) Accessible(claim Claim) bool {
	if c.OrgID != claim.OrgID {
		return false
	}
	return c.Type == ConversationGroup || c.HasParticipant(claim.UserID)
}

// RecipientsExcept lists the participants a new message should notify,
// i.e. everyone except the author.
func (c Conversation) RecipientsExcept(userID string) []string {
	return lo.Without(c.Participants, userID)
}
