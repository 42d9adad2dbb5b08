package repositories

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"campushub/domain"
)

type IMessageRepository interface {
	Store(m domain.Message) error
	// ListByConversation returns messages in the order they were persisted.
	ListByConversation(conversationID string) ([]domain.Message, error)
	// UpdateReadState rewrites the read fields of already stored messages.
	// Content is immutable; the key embeds CreatedAt and ID, so a rewrite
	// can never move or duplicate a message.
	UpdateReadState(msgs []domain.Message) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey is formatted as "msg:{conversation}:{timestamp_padded}:{id}":
//  1. 19-digit zero padding keeps lexicographical order chronological.
//  2. The id disambiguates two messages persisted in the same nanosecond.
func messageKey(m domain.Message) string {
	return fmt.Sprintf("msg:%s:%019d:%s", m.ConversationID, m.CreatedAt.UnixNano(), m.ID)
}

func messagePrefix(conversationID string) string {
	return fmt.Sprintf("msg:%s:", conversationID)
}

func (r MessageRepository) Store(m domain.Message) error {
	return setOne(r.db, messageKey(m), m)
}

func (r MessageRepository) ListByConversation(conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := scanPrefix(r.db, messagePrefix(conversationID), func(_ string, val []byte) error {
		var m domain.Message
		if err := decode(val, &m); err != nil {
			return err
		}
		messages = append(messages, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r MessageRepository) UpdateReadState(msgs []domain.Message) error {
	for _, m := range msgs {
		if err := setOne(r.db, messageKey(m), m); err != nil {
			return err
		}
	}
	return nil
}
