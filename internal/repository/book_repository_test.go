package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bookRows(ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "description", "author", "isbn", "category", "price", "image", "stock", "is_active", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "Title", "Desc", "Author", "978-0", "CS", 10.0, "", 3, true, time.Now(), time.Now())
	}
	return rows
}

func TestBookRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM books ORDER BY id LIMIT").
		WithArgs(10, 0).
		WillReturnRows(bookRows(1, 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM books`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	books, total, err := repo.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryListRejectsInvalidRange(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	_, _, err := repo.List(context.Background(), 0, 10)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidRange))
}

func TestBookRepositorySearchByISBNFragment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM books WHERE 1=1 AND isbn LIKE`).
		WithArgs("%978%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM books WHERE 1=1 AND isbn LIKE (.+) ORDER BY id LIMIT").
		WithArgs("%978%", 10, 0).
		WillReturnRows(bookRows(1))

	books, total, err := repo.Search(context.Background(), models.BookFilter{ISBN: "978", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryFindByIDAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM books WHERE id =").
		WithArgs(9).
		WillReturnRows(bookRows())

	book, err := repo.FindByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, book)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryCreateFillsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery("INSERT INTO books").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	book := &models.Book{Title: "New", ISBN: "978-1", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), book))
	assert.Equal(t, 7, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryDeleteDeactivates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM books WHERE id = (.+) FOR UPDATE").
		WithArgs(1).
		WillReturnRows(bookRows(1))
	mock.ExpectExec("UPDATE books SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	book, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, book.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM books WHERE id = (.+) FOR UPDATE").
		WithArgs(99).
		WillReturnRows(bookRows())
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 99, func(b *models.Book) {})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
