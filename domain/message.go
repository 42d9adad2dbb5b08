package domain

import (
	"time"

	"github.com/samber/lo"
)

type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file"
)

// ReadPolicy decides when the aggregate Read flag of a message flips to true.
// ReadBy remains the source of truth for per-user status either way.
type ReadPolicy string

const (
	// ReadByAll flips the flag once every participant other than the sender has read.
	ReadByAll ReadPolicy = "all"
	// ReadByAny flips the flag as soon as one other participant has read.
	ReadByAny ReadPolicy = "any"
)

func ParseReadPolicy(s string) ReadPolicy {
	if ReadPolicy(s) == ReadByAny {
		return ReadByAny
	}
	return ReadByAll
}

// Message is immutable once created, except for its read state.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	OrgID          string      `json:"org_id"`
	SenderID       string      `json:"sender_id"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	FileURL        string      `json:"file_url,omitempty"`
	FileName       string      `json:"file_name,omitempty"`
	FileSize       int64       `json:"file_size,omitempty"`
	Read           bool        `json:"read"`
	ReadBy         []string    `json:"read_by"`
	CreatedAt      time.Time   `json:"created_at"`
}

// MarkReadBy records that the user observed the message. Returns false when
// the user is the sender or already present in ReadBy, so repeated joins
// stay idempotent. The aggregate flag is recomputed against the
// conversation's participant list under the given policy.
func (m *Message) MarkReadBy(userID string, participants []string, policy ReadPolicy) bool {
	if userID == m.SenderID || lo.Contains(m.ReadBy, userID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, userID)
	m.Read = m.readUnder(participants, policy)
	return true
}

func (m *Message) readUnder(participants []string, policy ReadPolicy) bool {
	if policy == ReadByAny {
		return len(m.ReadBy) > 0
	}
	others := lo.Without(participants, m.SenderID)
	missing := lo.Without(others, m.ReadBy...)
	return len(missing) == 0
}
