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

// UserRepository manages persistence for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, password_hash, role, birth_date, graduated, overall_score, profile_picture, created_at, updated_at"

// List returns one page of users matching the filter, ordered by id.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if filter.Page < 1 || filter.Limit < 1 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Email != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(email) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Email)+"%")
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Graduated != nil {
		conditions = append(conditions, fmt.Sprintf("graduated = $%d", len(args)+1))
		args = append(args, *filter.Graduated)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// FindByID fetches a user by id, returning nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// FindByEmail fetches a user by email, compared case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE LOWER(email) = LOWER($1)", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Create inserts the user and fills its id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (name, email, password_hash, role, birth_date, graduated, overall_score, profile_picture, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.GetContext(ctx, &user.ID, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.BirthDate,
		user.Graduated, user.OverallScore, user.ProfilePicture, user.CreatedAt, user.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update applies the merge inside a transaction.
func (r *UserRepository) Update(ctx context.Context, id int, merge func(*models.User)) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update user: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1 FOR UPDATE", userColumns)
	var user models.User
	if err := tx.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	merge(&user)
	user.ID = id
	user.UpdatedAt = time.Now().UTC()

	const update = `UPDATE users SET name = :name, email = :email, password_hash = :password_hash, role = :role,
        birth_date = :birth_date, graduated = :graduated, overall_score = :overall_score,
        profile_picture = :profile_picture, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update user: %w", err)
	}
	return &user, nil
}

// Delete removes the user permanently and returns the removed record.
func (r *UserRepository) Delete(ctx context.Context, id int) (*models.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return user, nil
}
