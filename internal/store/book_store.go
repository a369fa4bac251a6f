package store

import (
	"context"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// BookStore keeps the book catalog in an insertion-ordered collection.
// Deleting a book is a soft delete: the record stays queryable with
// is_active flipped off.
type BookStore struct {
	books *Collection[models.Book, *models.Book]
}

// NewBookStore builds an empty book store.
func NewBookStore() *BookStore {
	return &BookStore{books: NewCollection[models.Book, *models.Book]()}
}

// List returns one page of the full catalog in insertion order.
func (s *BookStore) List(ctx context.Context, page, limit int) ([]models.Book, int, error) {
	return s.books.Page(page, limit)
}

// Search filters the catalog and paginates the filtered sequence.
func (s *BookStore) Search(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	return s.books.PageWhere(filter.Matches, filter.Page, filter.Limit)
}

// FindByID returns the book or nil when absent.
func (s *BookStore) FindByID(ctx context.Context, id int) (*models.Book, error) {
	book, ok := s.books.Find(id)
	if !ok {
		return nil, nil
	}
	return &book, nil
}

// FindByISBN matches the exact ISBN across active and inactive records.
func (s *BookStore) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book, ok := s.books.First(func(b models.Book) bool { return b.ISBN == isbn })
	if !ok {
		return nil, nil
	}
	return &book, nil
}

// Create inserts the book, assigning id and timestamps.
func (s *BookStore) Create(ctx context.Context, book *models.Book) error {
	*book = s.books.Insert(*book)
	return nil
}

// Update merges the changes atomically and returns the stored record.
func (s *BookStore) Update(ctx context.Context, id int, merge func(*models.Book)) (*models.Book, error) {
	book, err := s.books.Apply(id, merge)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
	}
	return &book, nil
}

// Delete soft-deletes the book and returns the deactivated record.
func (s *BookStore) Delete(ctx context.Context, id int) (*models.Book, error) {
	book, err := s.books.Apply(id, func(b *models.Book) { b.IsActive = false })
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
	}
	return &book, nil
}

// Categories lists the distinct categories across the whole catalog,
// soft-deleted books included, sorted lexicographically.
func (s *BookStore) Categories(ctx context.Context) ([]string, error) {
	return s.books.Distinct(func(b models.Book) string { return b.Category }), nil
}

// Stats summarises the catalog including inactive records.
func (s *BookStore) Stats(ctx context.Context) (*models.BookStats, error) {
	stats := &models.BookStats{}
	categories := make(map[string]struct{})
	for _, b := range s.books.All() {
		stats.Total++
		if b.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.TotalStock += b.Stock
		if b.Category != "" {
			categories[b.Category] = struct{}{}
		}
	}
	stats.Categories = len(categories)
	return stats, nil
}
