package repositories

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"campushub/domain"
	"campushub/errors"
)

type INotificationRepository interface {
	Store(n domain.Notification) error
	// Get is scoped by recipient: a foreign notification id behaves exactly
	// like a missing one, so existence is never leaked across users.
	Get(recipientID, id string) (domain.Notification, error)
	Update(n domain.Notification) error
	CountUnread(recipientID string) (int64, error)
	ListRecent(recipientID string, limit int) ([]domain.Notification, error)
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

func notificationKey(n domain.Notification) string {
	return fmt.Sprintf("notif:%s:%019d:%s", n.RecipientID, n.CreatedAt.UnixNano(), n.ID)
}

func notificationPrefix(recipientID string) string {
	return fmt.Sprintf("notif:%s:", recipientID)
}

func (r NotificationRepository) Store(n domain.Notification) error {
	return setOne(r.db, notificationKey(n), n)
}

func (r NotificationRepository) Get(recipientID, id string) (domain.Notification, error) {
	var found *domain.Notification
	err := scanPrefix(r.db, notificationPrefix(recipientID), func(key string, val []byte) error {
		if found != nil || !strings.HasSuffix(key, ":"+id) {
			return nil
		}
		var n domain.Notification
		if err := decode(val, &n); err != nil {
			return err
		}
		found = &n
		return nil
	})
	if err != nil {
		return domain.Notification{}, err
	}
	if found == nil {
		return domain.Notification{}, errors.ErrNotFound
	}
	return *found, nil
}

func (r NotificationRepository) Update(n domain.Notification) error {
	return setOne(r.db, notificationKey(n), n)
}

func (r NotificationRepository) CountUnread(recipientID string) (int64, error) {
	var count int64
	err := scanPrefix(r.db, notificationPrefix(recipientID), func(_ string, val []byte) error {
		var n domain.Notification
		if err := decode(val, &n); err != nil {
			return err
		}
		if !n.Read {
			count++
		}
		return nil
	})
	return count, err
}

// ListRecent returns the newest notifications first, at most limit of them.
func (r NotificationRepository) ListRecent(recipientID string, limit int) ([]domain.Notification, error) {
	var all []domain.Notification
	err := scanPrefix(r.db, notificationPrefix(recipientID), func(_ string, val []byte) error {
		var n domain.Notification
		if err := decode(val, &n); err != nil {
			return err
		}
		all = append(all, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Keys scan oldest first; reverse and cut.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
