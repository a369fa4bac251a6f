package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// BookRepository manages persistence for the book catalog.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = "id, title, description, author, isbn, category, price, image, stock, is_active, created_at, updated_at"

// List returns one page of the full catalog ordered by id.
func (r *BookRepository) List(ctx context.Context, page, limit int) ([]models.Book, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	query := fmt.Sprintf("SELECT %s FROM books ORDER BY id LIMIT $1 OFFSET $2", bookColumns)
	books := []models.Book{}
	if err := r.db.SelectContext(ctx, &books, query, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM books"); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	return books, total, nil
}

// Search filters the catalog conjunctively and paginates the result.
func (r *BookRepository) Search(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	if filter.Page < 1 || filter.Limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(author) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Author)+"%")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.ISBN != "" {
		conditions = append(conditions, fmt.Sprintf("isbn LIKE $%d", len(args)+1))
		args = append(args, "%"+filter.ISBN+"%")
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)+1))
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)+1))
		args = append(args, *filter.MaxPrice)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM books WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		bookColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	books := []models.Book{}
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	return books, total, nil
}

// FindByID fetches a book by id, returning nil when absent.
func (r *BookRepository) FindByID(ctx context.Context, id int) (*models.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &book, nil
}

// FindByISBN fetches a book by exact ISBN, active or not.
func (r *BookRepository) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE isbn = $1", bookColumns)
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, isbn); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find book by isbn: %w", err)
	}
	return &book, nil
}

// Create inserts the book and fills its id and timestamps.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	const query = `INSERT INTO books (title, description, author, isbn, category, price, image, stock, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.GetContext(ctx, &book.ID, query,
		book.Title, book.Description, book.Author, book.ISBN, book.Category,
		book.Price, book.Image, book.Stock, book.IsActive, book.CreatedAt, book.UpdatedAt); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update applies the merge inside a transaction so concurrent writers never
// interleave between the read and the write.
func (r *BookRepository) Update(ctx context.Context, id int, merge func(*models.Book)) (*models.Book, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update book: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1 FOR UPDATE", bookColumns)
	var book models.Book
	if err := tx.GetContext(ctx, &book, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, fmt.Errorf("lock book: %w", err)
	}

	merge(&book)
	book.ID = id
	book.UpdatedAt = time.Now().UTC()

	const update = `UPDATE books SET title = :title, description = :description, author = :author, isbn = :isbn,
        category = :category, price = :price, image = :image, stock = :stock, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update book: %w", err)
	}
	return &book, nil
}

// Delete soft-deletes the book and returns the deactivated record.
func (r *BookRepository) Delete(ctx context.Context, id int) (*models.Book, error) {
	return r.Update(ctx, id, func(b *models.Book) { b.IsActive = false })
}

// Categories lists the distinct non-empty categories, sorted.
func (r *BookRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	const query = "SELECT DISTINCT category FROM books WHERE category <> '' ORDER BY category"
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list book categories: %w", err)
	}
	return categories, nil
}

// Stats aggregates catalog counts including soft-deleted records.
func (r *BookRepository) Stats(ctx context.Context) (*models.BookStats, error) {
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE is_active) AS active,
        COUNT(*) FILTER (WHERE NOT is_active) AS inactive,
        COALESCE(SUM(stock), 0) AS total_stock,
        COUNT(DISTINCT category) FILTER (WHERE category <> '') AS categories
        FROM books`
	var stats models.BookStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("book stats: %w", err)
	}
	return &stats, nil
}
