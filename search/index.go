// Package search maintains a full-text index of message content, fed from a
// registry tap and queried by the debug surface.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"campushub/domain/event"
)

// Hit is one search result.
type Hit struct {
	MessageID      string  `json:"message_id"`
	ConversationID string  `json:"conversation_id"`
	SenderID       string  `json:"sender_id"`
	Content        string  `json:"content"`
	Score          float64 `json:"score"`
}

// MessageIndex indexes the text of every message it observes. It implements
// contract.EventSink so it can be attached as a registry tap: indexing is
// off the delivery path and an index failure never blocks fanout.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (idx *MessageIndex) Consume(_ context.Context, e event.Event) error {
	posted, ok := e.(event.NewMessage)
	if !ok {
		return nil
	}
	m := posted.Message
	if m.Content == "" {
		return nil
	}

	doc := bluge.NewDocument(m.ID).
		AddField(bluge.NewTextField("content", m.Content).StoreValue()).
		AddField(bluge.NewKeywordField("conversation_id", m.ConversationID).StoreValue()).
		AddField(bluge.NewKeywordField("sender_id", m.SenderID).StoreValue()).
		AddField(bluge.NewDateTimeField("created_at", m.CreatedAt))

	if err := idx.writer.Update(doc.ID(), doc); err != nil {
		idx.log.Warn("Failed to index message", "message_id", m.ID, "error", err)
		return err
	}
	return nil
}

// Search runs a full-text match over message content, optionally restricted
// to one conversation.
func (idx *MessageIndex) Search(ctx context.Context, query, conversationID string, limit int) ([]Hit, error) {
	reader, err := idx.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	match := bluge.NewMatchQuery(query).SetField("content")
	var q bluge.Query = match
	if conversationID != "" {
		q = bluge.NewBooleanQuery().
			AddMust(match).
			AddMust(bluge.NewTermQuery(conversationID).SetField("conversation_id"))
	}

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	next, err := iter.Next()
	for err == nil && next != nil {
		hit := Hit{Score: next.Score}
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "content":
				hit.Content = string(value)
			case "conversation_id":
				hit.ConversationID = string(value)
			case "sender_id":
				hit.SenderID = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		next, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// Close flushes and closes the underlying writer.
func (idx *MessageIndex) Close() error {
	return idx.writer.Close()
}
