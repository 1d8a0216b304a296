package repository

import (
	"context"
	"errors"

	"talkshalk/internal/cache"
	"talkshalk/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateUser is returned by Create when a unique index rejects the row.
// Callers re-check email and username to decide which field collided.
var ErrDuplicateUser = errors.New("user violates a unique constraint")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID is served from the cache when possible. The cached copy carries no
// password digest, so credential checks go through GetByEmail.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		return storeError(r.db.WithContext(ctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeError(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, models.NewUnavailableError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return models.NewUnavailableError(err)
	}
	return nil
}

// UpdateFields writes only the named columns so a partially loaded user can
// never blank the stored digest.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return models.NewUnavailableError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}
