package repositories

import (
	"log/slog"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"campushub/domain"
	"campushub/errors"
)

func seedDirectory(t *testing.T, repository DirectoryRepository) {
	t.Helper()
	req := require.New(t)
	req.NoError(repository.PutUser(domain.User{ID: "admin-1", OrgID: "org-1", Role: domain.RoleAdmin, Active: true}))
	req.NoError(repository.PutUser(domain.User{ID: "teacher-1", OrgID: "org-1", Role: domain.RoleTeacher, Active: true}))
	req.NoError(repository.PutUser(domain.User{ID: "teacher-2", OrgID: "org-1", Role: domain.RoleTeacher, Active: false}))
	req.NoError(repository.PutUser(domain.User{ID: "parent-1", OrgID: "org-1", Role: domain.RoleParent, Active: true}))
	req.NoError(repository.PutUser(domain.User{ID: "teacher-9", OrgID: "org-2", Role: domain.RoleTeacher, Active: true}))
	req.NoError(repository.PutStudent(domain.Student{ID: "student-1", OrgID: "org-1", GuardianID: "parent-1", Active: true}))
	req.NoError(repository.PutStudent(domain.Student{ID: "student-2", OrgID: "org-1", GuardianID: "parent-1", Active: false}))
}

func TestDirectoryRepository_ActiveUsers_Filters_Inactive_And_Foreign(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewDirectoryRepository(db, slog.Default())
	seedDirectory(t, repository)

	users, err := repository.ActiveUsers("org-1")
	req.NoError(err)
	ids := lo.Map(users, func(u domain.User, _ int) string { return u.ID })
	req.ElementsMatch([]string{"admin-1", "teacher-1", "parent-1"}, ids)
}

func TestDirectoryRepository_ActiveUsersByRole(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewDirectoryRepository(db, slog.Default())
	seedDirectory(t, repository)

	teachers, err := repository.ActiveUsersByRole("org-1", domain.RoleTeacher)
	req.NoError(err)
	req.Len(teachers, 1)
	req.Equal("teacher-1", teachers[0].ID)
}

func TestDirectoryRepository_Students(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewDirectoryRepository(db, slog.Default())
	seedDirectory(t, repository)

	students, err := repository.ActiveStudents("org-1")
	req.NoError(err)
	req.Len(students, 1)
	req.Equal("student-1", students[0].ID)
	req.Equal("parent-1", students[0].GuardianID)

	_, err = repository.GetStudent("org-1", "student-404")
	req.ErrorIs(err, errors.ErrNotFound)
}
