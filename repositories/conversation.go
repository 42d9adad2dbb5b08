package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"campushub/domain"
)

type IConversationRepository interface {
	Get(orgID, id string) (domain.Conversation, error)
	Put(c domain.Conversation) error
	// BumpLastMessage is the only mutation this subsystem performs on a
	// conversation record.
	BumpLastMessage(orgID, id string, at time.Time) error
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) ConversationRepository {
	return ConversationRepository{db: db, log: log}
}

// conversationKey scopes every record by organization first, so a caller can
// never reach a conversation outside its own org by id alone.
func conversationKey(orgID, id string) string {
	return fmt.Sprintf("conv:%s:%s", orgID, id)
}

func (r ConversationRepository) Get(orgID, id string) (domain.Conversation, error) {
	var c domain.Conversation
	err := getOne(r.db, conversationKey(orgID, id), &c)
	return c, err
}

func (r ConversationRepository) Put(c domain.Conversation) error {
	return setOne(r.db, conversationKey(c.OrgID, c.ID), c)
}

func (r ConversationRepository) BumpLastMessage(orgID, id string, at time.Time) error {
	c, err := r.Get(orgID, id)
	if err != nil {
		return err
	}
	c.LastMessageAt = at
	return r.Put(c)
}
