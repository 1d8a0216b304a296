package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"talkshalk/internal/credential"
	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/repository"
	"talkshalk/internal/validation"
)

type IdentityService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	hasher   credential.Hasher
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries self-service edits. UserID is always the caller's
// own id; a nil field is left untouched.
type UpdateProfileInput struct {
	UserID uint
	Bio    *string
}

func NewIdentityService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	hasher credential.Hasher,
) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		postRepo: postRepo,
		hasher:   hasher,
	}
}

// Register creates a user after validating input and checking uniqueness.
// An email collision is reported ahead of a username collision.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := validation.NormalizeEmail(in.Email)

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, credential.ErrTooLong) {
			return nil, models.NewValidationError("password must not exceed 72 bytes")
		}
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: digest,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			// Lost a race with a concurrent signup; report which field collided.
			if err := s.checkAvailable(ctx, username, email); err != nil {
				return nil, err
			}
			return nil, models.NewDuplicateUsernameError()
		}
		return nil, err
	}

	observability.Logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	user.PostIDs = []uint{}
	return user, nil
}

func (s *IdentityService) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := s.userRepo.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateEmailError()
	}

	taken, err = s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateUsernameError()
	}
	return nil
}

// VerifyCredentials returns the same error for an unknown email and a wrong
// password.
func (s *IdentityService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.AuthFailures.WithLabelValues("invalid_credentials").Inc()
			return nil, models.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if !s.hasher.Matches(password, user.Password) {
		observability.AuthFailures.WithLabelValues("invalid_credentials").Inc()
		return nil, models.NewInvalidCredentialsError()
	}
	return user, nil
}

// GetByID returns the user with its authored post ids attached.
func (s *IdentityService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	postIDs, err := s.postRepo.IDsByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PostIDs = postIDs
	return user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateLength("Bio", bio, validation.MaxBioLen); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["bio"] = bio
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, in.UserID)
}

// UpdateAvatar points the user's avatar at a stored blob reference.
func (s *IdentityService) UpdateAvatar(ctx context.Context, userID uint, avatarRef string) (*models.User, error) {
	if strings.TrimSpace(avatarRef) == "" {
		return nil, models.NewValidationError("Avatar is required")
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"avatar": avatarRef}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID)
}
