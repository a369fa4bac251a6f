package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// CourseRepository is the storage contract for courses.
type CourseRepository interface {
	List(ctx context.Context, page, limit int) ([]models.Course, int, error)
	Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id int, merge func(*models.Course)) (*models.Course, error)
	Delete(ctx context.Context, id int) (*models.Course, error)
	Categories(ctx context.Context) ([]string, error)
}

const courseCategoriesCacheKey = "courses:categories"

// CreateCourseRequest handles creation payload.
type CreateCourseRequest struct {
	Title               string  `json:"title" validate:"required"`
	Description         string  `json:"description"`
	Image               string  `json:"image"`
	Instructor          string  `json:"instructor" validate:"required"`
	Duration            string  `json:"duration"`
	Level               string  `json:"level" validate:"required"`
	Category            string  `json:"category"`
	Price               float64 `json:"price" validate:"gte=0"`
	MaxParticipants     int     `json:"max_participants" validate:"gte=1"`
	CurrentParticipants int     `json:"current_participants" validate:"gte=0"`
}

// UpdateCourseRequest handles partial update payload.
type UpdateCourseRequest struct {
	Title               *string  `json:"title" validate:"omitempty,min=1"`
	Description         *string  `json:"description"`
	Image               *string  `json:"image"`
	Instructor          *string  `json:"instructor" validate:"omitempty,min=1"`
	Duration            *string  `json:"duration"`
	Level               *string  `json:"level"`
	Category            *string  `json:"category"`
	Price               *float64 `json:"price" validate:"omitempty,gte=0"`
	MaxParticipants     *int     `json:"max_participants" validate:"omitempty,gte=1"`
	CurrentParticipants *int     `json:"current_participants" validate:"omitempty,gte=0"`
	IsActive            *bool    `json:"is_active"`
}

// UpdateParticipantsRequest handles the enrollment counter endpoint payload.
type UpdateParticipantsRequest struct {
	CurrentParticipants *int `json:"current_participants" validate:"required,gte=0"`
}

// UpdateCourseStatusRequest handles the activation endpoint payload.
type UpdateCourseStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CourseService manages course rules: the closed level set and the
// enrollment capacity bound. Capacity is checked here, not in storage.
type CourseService struct {
	repo      CourseRepository
	cache     CatalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService. A nil cache disables category
// caching.
func NewCourseService(repo CourseRepository, cache CatalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns one page of courses plus pagination metadata.
func (s *CourseService) List(ctx context.Context, page, limit int) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return courses, models.NewPagination(page, limit, total), nil
}

// Search filters courses and paginates the filtered sequence.
func (s *CourseService) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return courses, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a single course or a 404.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Create validates the payload, the level set and the capacity bound, then
// stores the new course as active.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !models.ValidCourseLevel(req.Level) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be Beginner, Intermediate or Advanced")
	}
	if req.CurrentParticipants > req.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "current participants exceed the maximum")
	}

	course := &models.Course{
		Title:               req.Title,
		Description:         req.Description,
		Image:               req.Image,
		Instructor:          req.Instructor,
		Duration:            req.Duration,
		Level:               models.CourseLevel(req.Level),
		Category:            req.Category,
		Price:               req.Price,
		MaxParticipants:     req.MaxParticipants,
		CurrentParticipants: req.CurrentParticipants,
		IsActive:            true,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateCategories(ctx)
	s.logger.Info("course created", zap.Int("course_id", course.ID))
	return course, nil
}

// Update merges the present fields into the stored course. The capacity
// bound is re-checked against the merged result.
func (s *CourseService) Update(ctx context.Context, id int, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.Level != nil && !models.ValidCourseLevel(*req.Level) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be Beginner, Intermediate or Advanced")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	participants := current.CurrentParticipants
	capacity := current.MaxParticipants
	if req.CurrentParticipants != nil {
		participants = *req.CurrentParticipants
	}
	if req.MaxParticipants != nil {
		capacity = *req.MaxParticipants
	}
	if participants > capacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "current participants exceed the maximum")
	}

	course, err := s.repo.Update(ctx, id, func(c *models.Course) {
		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Image != nil {
			c.Image = *req.Image
		}
		if req.Instructor != nil {
			c.Instructor = *req.Instructor
		}
		if req.Duration != nil {
			c.Duration = *req.Duration
		}
		if req.Level != nil {
			c.Level = models.CourseLevel(*req.Level)
		}
		if req.Category != nil {
			c.Category = *req.Category
		}
		if req.Price != nil {
			c.Price = *req.Price
		}
		if req.MaxParticipants != nil {
			c.MaxParticipants = *req.MaxParticipants
		}
		if req.CurrentParticipants != nil {
			c.CurrentParticipants = *req.CurrentParticipants
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCategories(ctx)
	return course, nil
}

// UpdateParticipants sets the enrollment counter, bounded by the course
// capacity.
func (s *CourseService) UpdateParticipants(ctx context.Context, id int, req UpdateParticipantsRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participants payload")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if *req.CurrentParticipants > current.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "current participants exceed the maximum")
	}

	return s.repo.Update(ctx, id, func(c *models.Course) {
		c.CurrentParticipants = *req.CurrentParticipants
	})
}

// UpdateStatus toggles course activation.
func (s *CourseService) UpdateStatus(ctx context.Context, id int, req UpdateCourseStatusRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	return s.repo.Update(ctx, id, func(c *models.Course) { c.IsActive = *req.IsActive })
}

// Delete removes the course permanently.
func (s *CourseService) Delete(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)
	s.logger.Info("course deleted", zap.Int("course_id", id))
	return course, nil
}

// Categories returns the sorted distinct category list, served from cache
// when fresh.
func (s *CourseService) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, courseCategoriesCacheKey, &cached); err == nil {
			return cached, nil
		} else if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("course categories cache read failed", zap.Error(err))
		}
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courseCategoriesCacheKey, categories, s.cacheTTL); err != nil {
			s.logger.Warn("course categories cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (s *CourseService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, courseCategoriesCacheKey); err != nil {
		s.logger.Warn("course categories cache invalidation failed", zap.Error(err))
	}
}
