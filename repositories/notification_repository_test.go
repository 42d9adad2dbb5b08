package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campushub/domain"
	"campushub/errors"
)

func storedNotification(recipientID string, at time.Time, read bool) domain.Notification {
	return domain.Notification{
		ID:          uuid.NewString(),
		OrgID:       "org-1",
		RecipientID: recipientID,
		Type:        domain.NotificationAnnouncement,
		Title:       "title",
		Message:     "body",
		Priority:    domain.PriorityMedium,
		Read:        read,
		CreatedAt:   at,
	}
}

func TestNotificationRepository_Get_Is_Scoped_By_Recipient(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewNotificationRepository(db, slog.Default())

	at := time.Unix(0, 1757000000000000000).UTC()
	mine := storedNotification("bob", at, false)
	theirs := storedNotification("alice", at, false)
	req.NoError(repository.Store(mine))
	req.NoError(repository.Store(theirs))

	// Then the owner can read it back
	fetched, err := repository.Get("bob", mine.ID)
	req.NoError(err)
	req.Equal(mine.ID, fetched.ID)

	// And someone else's id behaves exactly like a missing one
	_, err = repository.Get("bob", theirs.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repository.Get("bob", "no-such-id")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewNotificationRepository(db, slog.Default())

	at := time.Unix(0, 1757000000000000000).UTC()
	req.NoError(repository.Store(storedNotification("bob", at, false)))
	req.NoError(repository.Store(storedNotification("bob", at.Add(time.Second), false)))
	req.NoError(repository.Store(storedNotification("bob", at.Add(2*time.Second), true)))
	req.NoError(repository.Store(storedNotification("alice", at, false)))

	count, err := repository.CountUnread("bob")
	req.NoError(err)
	req.Equal(int64(2), count)
}

func TestNotificationRepository_Update_Flips_Read_In_Place(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewNotificationRepository(db, slog.Default())

	n := storedNotification("bob", time.Unix(0, 1757000000000000000).UTC(), false)
	req.NoError(repository.Store(n))

	n.Read = true
	req.NoError(repository.Update(n))

	count, err := repository.CountUnread("bob")
	req.NoError(err)
	req.Zero(count)

	fetched, err := repository.Get("bob", n.ID)
	req.NoError(err)
	req.True(fetched.Read)
}

func TestNotificationRepository_ListRecent_Newest_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewNotificationRepository(db, slog.Default())

	at := time.Unix(0, 1757000000000000000).UTC()
	var ids []string
	for i := 0; i < 5; i++ {
		n := storedNotification("bob", at.Add(time.Duration(i)*time.Minute), false)
		req.NoError(repository.Store(n))
		ids = append(ids, n.ID)
	}

	recent, err := repository.ListRecent("bob", 3)
	req.NoError(err)
	req.Len(recent, 3)
	req.Equal(ids[4], recent[0].ID)
	req.Equal(ids[3], recent[1].ID)
	req.Equal(ids[2], recent[2].ID)
}
