package store

import (
	"context"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// CourseStore keeps courses in an insertion-ordered collection. Unlike
// books, deleting a course removes it permanently.
type CourseStore struct {
	courses *Collection[models.Course, *models.Course]
}

// NewCourseStore builds an empty course store.
func NewCourseStore() *CourseStore {
	return &CourseStore{courses: NewCollection[models.Course, *models.Course]()}
}

// List returns one page of all courses in insertion order.
func (s *CourseStore) List(ctx context.Context, page, limit int) ([]models.Course, int, error) {
	return s.courses.Page(page, limit)
}

// Search filters courses and paginates the filtered sequence.
func (s *CourseStore) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	return s.courses.PageWhere(filter.Matches, filter.Page, filter.Limit)
}

// FindByID returns the course or nil when absent.
func (s *CourseStore) FindByID(ctx context.Context, id int) (*models.Course, error) {
	course, ok := s.courses.Find(id)
	if !ok {
		return nil, nil
	}
	return &course, nil
}

// Create inserts the course, assigning id and timestamps.
func (s *CourseStore) Create(ctx context.Context, course *models.Course) error {
	*course = s.courses.Insert(*course)
	return nil
}

// Update merges the changes atomically and returns the stored record.
func (s *CourseStore) Update(ctx context.Context, id int, merge func(*models.Course)) (*models.Course, error) {
	course, err := s.courses.Apply(id, merge)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return &course, nil
}

// Delete hard-deletes the course; a later FindByID returns nil.
func (s *CourseStore) Delete(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courses.Remove(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return &course, nil
}

// Categories lists the distinct course categories, sorted.
func (s *CourseStore) Categories(ctx context.Context) ([]string, error) {
	return s.courses.Distinct(func(c models.Course) string { return c.Category }), nil
}
