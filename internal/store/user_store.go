package store

import (
	"context"
	"strings"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// UserStore keeps user accounts in an insertion-ordered collection. The
// legacy user model never enabled soft deletion, so removal is permanent.
type UserStore struct {
	users *Collection[models.User, *models.User]
}

// NewUserStore builds an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: NewCollection[models.User, *models.User]()}
}

// List returns one page of users matching the filter.
func (s *UserStore) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return s.users.PageWhere(filter.Matches, filter.Page, filter.Limit)
}

// FindByID returns the user or nil when absent.
func (s *UserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := s.users.Find(id)
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindByEmail matches the email case-insensitively.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users.First(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create inserts the user, assigning id and timestamps.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	*user = s.users.Insert(*user)
	return nil
}

// Update merges the changes atomically and returns the stored record.
func (s *UserStore) Update(ctx context.Context, id int, merge func(*models.User)) (*models.User, error) {
	user, err := s.users.Apply(id, merge)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}

// Delete removes the user permanently.
func (s *UserStore) Delete(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.Remove(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}
