package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// BookRepository is the storage contract for the book catalog, satisfied by
// both the in-memory store and the Postgres repository.
type BookRepository interface {
	List(ctx context.Context, page, limit int) ([]models.Book, int, error)
	Search(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error)
	FindByID(ctx context.Context, id int) (*models.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id int, merge func(*models.Book)) (*models.Book, error)
	Delete(ctx context.Context, id int) (*models.Book, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.BookStats, error)
}

// CatalogCache is the optional cache contract for category lookups.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const bookCategoriesCacheKey = "books:categories"

// CreateBookRequest handles creation payload.
type CreateBookRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Author      string  `json:"author" validate:"required"`
	ISBN        string  `json:"isbn" validate:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// UpdateBookRequest handles partial update payload. Absent fields leave the
// stored value untouched.
type UpdateBookRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Author      *string  `json:"author" validate:"omitempty,min=1"`
	ISBN        *string  `json:"isbn" validate:"omitempty,min=1"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateStockRequest handles the dedicated stock endpoint payload.
type UpdateStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

// BookService manages the book catalog rules: field validation, ISBN
// uniqueness and the soft-delete lifecycle.
type BookService struct {
	repo      BookRepository
	cache     CatalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookService constructs a BookService. A nil cache disables category
// caching.
func NewBookService(repo BookRepository, cache CatalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *BookService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns one catalog page plus pagination metadata.
func (s *BookService) List(ctx context.Context, page, limit int) ([]models.Book, *models.Pagination, error) {
	books, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return books, models.NewPagination(page, limit, total), nil
}

// Search filters the catalog and paginates the filtered sequence.
func (s *BookService) Search(ctx context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error) {
	books, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return books, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a single book or a 404.
func (s *BookService) Get(ctx context.Context, id int) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	if book == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
	}
	return book, nil
}

// Create validates the payload, enforces ISBN uniqueness and stores the new
// book as active.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book payload")
	}

	existing, err := s.repo.FindByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check isbn")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "a book with this ISBN already exists")
	}

	book := &models.Book{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book")
	}

	s.invalidateCategories(ctx)
	s.logger.Info("book created", zap.Int("book_id", book.ID), zap.String("isbn", book.ISBN))
	return book, nil
}

// Update merges the present fields into the stored book. Changing the ISBN
// re-checks uniqueness against every other record, soft-deleted ones too.
func (s *BookService) Update(ctx context.Context, id int, req UpdateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book payload")
	}

	if req.ISBN != nil {
		existing, err := s.repo.FindByISBN(ctx, *req.ISBN)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check isbn")
		}
		if existing != nil && existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "a book with this ISBN already exists")
		}
	}

	book, err := s.repo.Update(ctx, id, func(b *models.Book) {
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.Description != nil {
			b.Description = *req.Description
		}
		if req.Author != nil {
			b.Author = *req.Author
		}
		if req.ISBN != nil {
			b.ISBN = *req.ISBN
		}
		if req.Category != nil {
			b.Category = *req.Category
		}
		if req.Price != nil {
			b.Price = *req.Price
		}
		if req.Image != nil {
			b.Image = *req.Image
		}
		if req.Stock != nil {
			b.Stock = *req.Stock
		}
		if req.IsActive != nil {
			b.IsActive = *req.IsActive
		}
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCategories(ctx)
	return book, nil
}

// UpdateStock sets the absolute stock level.
func (s *BookService) UpdateStock(ctx context.Context, id int, req UpdateStockRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stock payload")
	}
	return s.repo.Update(ctx, id, func(b *models.Book) { b.Stock = *req.Stock })
}

// Delete soft-deletes the book; the record stays retrievable.
func (s *BookService) Delete(ctx context.Context, id int) (*models.Book, error) {
	book, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book deactivated", zap.Int("book_id", id))
	return book, nil
}

// Categories returns the sorted distinct category list, served from cache
// when fresh.
func (s *BookService) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, bookCategoriesCacheKey, &cached); err == nil {
			return cached, nil
		} else if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("book categories cache read failed", zap.Error(err))
		}
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, bookCategoriesCacheKey, categories, s.cacheTTL); err != nil {
			s.logger.Warn("book categories cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// Stats aggregates catalog counts, soft-deleted records included.
func (s *BookService) Stats(ctx context.Context) (*models.BookStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate stats")
	}
	return stats, nil
}

// All streams the complete catalog for exports.
func (s *BookService) All(ctx context.Context) ([]models.Book, error) {
	books, _, err := s.repo.List(ctx, 1, 1<<30)
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (s *BookService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, bookCategoriesCacheKey); err != nil {
		s.logger.Warn("book categories cache invalidation failed", zap.Error(err))
	}
}
