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

// CourseRepository manages persistence for courses. Deletion is a hard
// delete, unlike the book catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, title, description, image, instructor, duration, level, category, price, max_participants, current_participants, is_active, created_at, updated_at"

// List returns one page of courses ordered by id.
func (r *CourseRepository) List(ctx context.Context, page, limit int) ([]models.Course, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY id LIMIT $1 OFFSET $2", courseColumns)
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// Search filters courses conjunctively and paginates the result.
func (r *CourseRepository) Search(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	if filter.Page < 1 || filter.Limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.Instructor != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(instructor) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Instructor)+"%")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(level) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Level))
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM courses WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		courseColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course by id, returning nil when absent.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts the course and fills its id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (title, description, image, instructor, duration, level, category, price, max_participants, current_participants, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := r.db.GetContext(ctx, &course.ID, query,
		course.Title, course.Description, course.Image, course.Instructor, course.Duration,
		course.Level, course.Category, course.Price, course.MaxParticipants,
		course.CurrentParticipants, course.IsActive, course.CreatedAt, course.UpdatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update applies the merge inside a transaction.
func (r *CourseRepository) Update(ctx context.Context, id int, merge func(*models.Course)) (*models.Course, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update course: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1 FOR UPDATE", courseColumns)
	var course models.Course
	if err := tx.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("lock course: %w", err)
	}

	merge(&course)
	course.ID = id
	course.UpdatedAt = time.Now().UTC()

	const update = `UPDATE courses SET title = :title, description = :description, image = :image, instructor = :instructor,
        duration = :duration, level = :level, category = :category, price = :price, max_participants = :max_participants,
        current_participants = :current_participants, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update course: %w", err)
	}
	return &course, nil
}

// Delete removes the course permanently and returns the removed record.
func (r *CourseRepository) Delete(ctx context.Context, id int) (*models.Course, error) {
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("delete course: %w", err)
	}
	return course, nil
}

// Categories lists the distinct non-empty categories, sorted.
func (r *CourseRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	const query = "SELECT DISTINCT category FROM courses WHERE category <> '' ORDER BY category"
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list course categories: %w", err)
	}
	return categories, nil
}
