package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campushub/domain"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMessageRepository_Store_And_List_In_Order(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())

	convID := "conv-1"
	at := time.Unix(0, 1757000000000000000).UTC()
	senders := []string{"alice", "bob", "clara"}
	for i, sender := range senders {
		err := repository.Store(domain.Message{
			ID:             uuid.NewString(),
			ConversationID: convID,
			OrgID:          "org-1",
			SenderID:       sender,
			Type:           domain.MessageText,
			Content:        "hello",
			CreatedAt:      at.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	fetched, err := repository.ListByConversation(convID)
	req.NoError(err)
	req.Len(fetched, 3)

	// Then messages come back in the order they were persisted
	for i, m := range fetched {
		req.Equal(senders[i], m.SenderID)
	}
}

func TestMessageRepository_List_Ignores_Other_Conversations(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())
	at := time.Unix(0, 1757000000000000000).UTC()

	req.NoError(repository.Store(domain.Message{ID: uuid.NewString(), ConversationID: "conv-1", SenderID: "alice", CreatedAt: at}))
	req.NoError(repository.Store(domain.Message{ID: uuid.NewString(), ConversationID: "conv-2", SenderID: "bob", CreatedAt: at}))

	fetched, err := repository.ListByConversation("conv-1")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("alice", fetched[0].SenderID)
}

func TestMessageRepository_UpdateReadState_Keeps_Key_Stable(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default())

	msg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: "conv-1",
		SenderID:       "alice",
		Content:        "read me",
		CreatedAt:      time.Unix(0, 1757000000000000000).UTC(),
	}
	req.NoError(repository.Store(msg))

	// When the read state is rewritten
	msg.ReadBy = []string{"bob"}
	msg.Read = true
	req.NoError(repository.UpdateReadState([]domain.Message{msg}))

	// Then the conversation still holds exactly one message, now read
	fetched, err := repository.ListByConversation("conv-1")
	req.NoError(err)
	req.Len(fetched, 1)
	req.True(fetched[0].Read)
	req.Equal([]string{"bob"}, fetched[0].ReadBy)
	req.Equal("read me", fetched[0].Content)
}
