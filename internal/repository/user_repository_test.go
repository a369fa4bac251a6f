package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
)

func userRows(ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "birth_date", "graduated", "overall_score", "profile_picture", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "User", "user@example.com", "hash", "student", "", false, 0, "", time.Now(), time.Now())
	}
	return rows
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE LOWER\(email\) = LOWER`).
		WithArgs("User@Example.com").
		WillReturnRows(userRows(1))

	user, err := repo.FindByEmail(context.Background(), "User@Example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE 1=1 AND role =`).
		WithArgs("student").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE 1=1 AND role = (.+) ORDER BY id LIMIT").
		WithArgs("student", 10, 0).
		WillReturnRows(userRows(2))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: "student", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateFillsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	user := &models.User{Name: "New", Email: "new@example.com", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, 4, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
