package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// UserRepository is the storage contract for user accounts.
type UserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int, merge func(*models.User)) (*models.User, error)
	Delete(ctx context.Context, id int) (*models.User, error)
}

type pictureStorage interface {
	Save(folder, originalName string, data []byte) (string, error)
	Delete(publicURL string) error
}

// CreateUserRequest handles admin-side account creation payload.
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=admin teacher student"`
	BirthDate string `json:"birth_date"`
}

// UpdateUserRequest handles partial update payload. Role changes go through
// the dedicated admin update, never the self-service path.
type UpdateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	Role         *string `json:"role" validate:"omitempty,oneof=admin teacher student"`
	BirthDate    *string `json:"birth_date"`
	Graduated    *bool   `json:"graduated"`
	OverallScore *int    `json:"overall_score" validate:"omitempty,gte=0"`
}

// UserService manages account records. Self-service callers reach it with
// the id taken from their token, admins with the id from the route.
type UserService struct {
	repo      UserRepository
	storage   pictureStorage
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService. A nil storage disables profile
// picture uploads.
func NewUserService(repo UserRepository, storage pictureStorage, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, storage: storage, validator: validate, logger: logger}
}

// List returns one page of users plus pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return users, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a single user or a 404.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// Create adds an account with an explicit role. The email must be unused.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.UserRole(req.Role),
		BirthDate:    req.BirthDate,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

// Update merges the present fields into the stored user. A changed email
// must stay unique.
func (s *UserService) Update(ctx context.Context, id int, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if req.Email != nil {
		existing, err := s.repo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if existing != nil && existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "email is already registered")
		}
	}

	var passwordHash string
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		passwordHash = string(hash)
	}

	return s.repo.Update(ctx, id, func(u *models.User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Email != nil {
			u.Email = *req.Email
		}
		if passwordHash != "" {
			u.PasswordHash = passwordHash
		}
		if req.Role != nil {
			u.Role = models.UserRole(*req.Role)
		}
		if req.BirthDate != nil {
			u.BirthDate = *req.BirthDate
		}
		if req.Graduated != nil {
			u.Graduated = *req.Graduated
		}
		if req.OverallScore != nil {
			u.OverallScore = *req.OverallScore
		}
	})
}

// UpdateProfile is the self-service update: identity comes from the token
// and the role field is ignored even when present.
func (s *UserService) UpdateProfile(ctx context.Context, claims *models.JWTClaims, req UpdateUserRequest) (*models.User, error) {
	req.Role = nil
	return s.Update(ctx, claims.UserID(), req)
}

// UpdateProfilePicture stores the uploaded image and points the account at
// its public URL, dropping the previous file.
func (s *UserService) UpdateProfilePicture(ctx context.Context, id int, originalName string, data []byte) (*models.User, error) {
	if s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "uploads are not configured")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Save("profiles", originalName, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store picture")
	}

	user, err := s.repo.Update(ctx, id, func(u *models.User) { u.ProfilePicture = url })
	if err != nil {
		return nil, err
	}

	if current.ProfilePicture != "" {
		if err := s.storage.Delete(current.ProfilePicture); err != nil {
			s.logger.Warn("failed to remove previous profile picture", zap.Error(err))
		}
	}
	return user, nil
}

// Delete removes the account permanently.
func (s *UserService) Delete(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user deleted", zap.Int("user_id", id))
	return user, nil
}
