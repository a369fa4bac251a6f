package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

func courseRows(ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "description", "image", "instructor", "duration", "level", "category", "price", "max_participants", "current_participants", "is_active", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "Course", "Desc", "", "Instructor", "8 weeks", "Beginner", "Programming", 100.0, 30, 5, true, time.Now(), time.Now())
	}
	return rows
}

func TestCourseRepositorySearchByLevel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses WHERE 1=1 AND LOWER\(level\) =`).
		WithArgs("beginner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM courses WHERE 1=1 AND LOWER\(level\) = (.+) ORDER BY id LIMIT`).
		WithArgs("beginner", 10, 0).
		WillReturnRows(courseRows(1))

	courses, total, err := repo.Search(context.Background(), models.CourseFilter{Level: "Beginner", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteIsHard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id =").
		WithArgs(3).
		WillReturnRows(courseRows(3))
	mock.ExpectExec("DELETE FROM courses WHERE id =").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id =").
		WithArgs(8).
		WillReturnRows(courseRows())

	_, err := repo.Delete(context.Background(), 8)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateMerges(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM courses WHERE id = (.+) FOR UPDATE").
		WithArgs(1).
		WillReturnRows(courseRows(1))
	mock.ExpectExec("UPDATE courses SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course, err := repo.Update(context.Background(), 1, func(c *models.Course) {
		c.CurrentParticipants = 6
	})
	require.NoError(t, err)
	assert.Equal(t, 6, course.CurrentParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}
