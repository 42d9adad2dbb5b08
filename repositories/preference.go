package repositories

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"campushub/domain"
	apperrors "campushub/errors"
)

type IPreferenceRepository interface {
	// Get reports ok=false when no record exists yet; the service serves
	// the all-true baseline in that case.
	Get(orgID, userID string) (domain.NotificationPreference, bool, error)
	Put(p domain.NotificationPreference) error
}

type PreferenceRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPreferenceRepository(db *badger.DB, log *slog.Logger) PreferenceRepository {
	return PreferenceRepository{db: db, log: log}
}

func preferenceKey(orgID, userID string) string {
	return fmt.Sprintf("pref:%s:%s", orgID, userID)
}

func (r PreferenceRepository) Get(orgID, userID string) (domain.NotificationPreference, bool, error) {
	var p domain.NotificationPreference
	err := getOne(r.db, preferenceKey(orgID, userID), &p)
	switch {
	case err == nil:
		return p, true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return domain.NotificationPreference{}, false, nil
	default:
		return domain.NotificationPreference{}, false, err
	}
}

func (r PreferenceRepository) Put(p domain.NotificationPreference) error {
	return setOne(r.db, preferenceKey(p.OrgID, p.UserID), p)
}
