//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_directory_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"campushub/domain"
)

// IDirectoryRepository is the read-only view over the host application's
// user and student records, used for audience resolution. This subsystem
// never mutates directory entries; the Put methods exist for seeding tools
// and tests only.
type IDirectoryRepository interface {
	ActiveUsers(orgID string) ([]domain.User, error)
	ActiveUsersByRole(orgID string, role domain.Role) ([]domain.User, error)
	ActiveStudents(orgID string) ([]domain.Student, error)
	GetStudent(orgID, id string) (domain.Student, error)

	PutUser(u domain.User) error
	PutStudent(s domain.Student) error
}

type DirectoryRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDirectoryRepository(db *badger.DB, log *slog.Logger) DirectoryRepository {
	return DirectoryRepository{db: db, log: log}
}

func userKey(orgID, id string) string {
	return fmt.Sprintf("user:%s:%s", orgID, id)
}

func studentKey(orgID, id string) string {
	return fmt.Sprintf("student:%s:%s", orgID, id)
}

func (r DirectoryRepository) ActiveUsers(orgID string) ([]domain.User, error) {
	var users []domain.User
	err := scanPrefix(r.db, fmt.Sprintf("user:%s:", orgID), func(_ string, val []byte) error {
		var u domain.User
		if err := decode(val, &u); err != nil {
			return err
		}
		if u.Active {
			users = append(users, u)
		}
		return nil
	})
	return users, err
}

func (r DirectoryRepository) ActiveUsersByRole(orgID string, role domain.Role) ([]domain.User, error) {
	users, err := r.ActiveUsers(orgID)
	if err != nil {
		return nil, err
	}
	var filtered []domain.User
	for _, u := range users {
		if u.Role == role {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (r DirectoryRepository) ActiveStudents(orgID string) ([]domain.Student, error) {
	var students []domain.Student
	err := scanPrefix(r.db, fmt.Sprintf("student:%s:", orgID), func(_ string, val []byte) error {
		var s domain.Student
		if err := decode(val, &s); err != nil {
			return err
		}
		if s.Active {
			students = append(students, s)
		}
		return nil
	})
	return students, err
}

func (r DirectoryRepository) GetStudent(orgID, id string) (domain.Student, error) {
	var s domain.Student
	err := getOne(r.db, studentKey(orgID, id), &s)
	return s, err
}

func (r DirectoryRepository) PutUser(u domain.User) error {
	return setOne(r.db, userKey(u.OrgID, u.ID), u)
}

func (r DirectoryRepository) PutStudent(s domain.Student) error {
	return setOne(r.db, studentKey(s.OrgID, s.ID), s)
}
