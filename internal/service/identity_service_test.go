package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"talkshalk/internal/models"
	"talkshalk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewIdentityService(noopUserRepo(), noopPostRepo(), plainHasher{})
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@example.com", Password: "secret"}},
		{"long username", RegisterInput{Username: strings.Repeat("a", 21), Email: "a@example.com", Password: "secret"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "secret"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tt.in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestIdentityService_Register_NormalizesAndHashes(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var stored *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 5
		stored = u
		return nil
	}
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  alice ",
		Email:    " Alice@Example.COM ",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, "hashed:secret", stored.Password)
}

func TestIdentityService_Register_EmailCollisionWins(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.emailTakenFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	repo.usernameTakenFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret"})
	assertCode(t, err, models.CodeDuplicateEmail)
}

func TestIdentityService_Register_UsernameCollision(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.usernameTakenFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret"})
	assertCode(t, err, models.CodeDuplicateUsername)
}

func TestIdentityService_Register_RaceIsReclassified(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	checks := 0
	repo.emailTakenFn = func(_ context.Context, _ string) (bool, error) {
		checks++
		// Free on the first check, taken once the competing insert committed.
		return checks > 1, nil
	}
	repo.createFn = func(_ context.Context, _ *models.User) error { return repository.ErrDuplicateUser }
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret"})
	assertCode(t, err, models.CodeDuplicateEmail)
}

func TestIdentityService_VerifyCredentials(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "alice@example.com" {
			return &models.User{ID: 1, Email: email, Password: "hashed:secret"}, nil
		}
		return nil, models.NewNotFoundError("User", email)
	}
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})
	ctx := context.Background()

	user, err := svc.VerifyCredentials(ctx, "ALICE@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, wrongPassword := svc.VerifyCredentials(ctx, "alice@example.com", "nope")
	_, unknownEmail := svc.VerifyCredentials(ctx, "bob@example.com", "secret")
	assertCode(t, wrongPassword, models.CodeInvalidCredentials)
	assertCode(t, unknownEmail, models.CodeInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestIdentityService_VerifyCredentials_StoreFailure(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
		return nil, models.NewUnavailableError(errors.New("db down"))
	}
	svc := NewIdentityService(repo, noopPostRepo(), plainHasher{})

	_, err := svc.VerifyCredentials(context.Background(), "a@example.com", "secret")
	assertCode(t, err, models.CodeUnavailable)
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var written map[string]interface{}
	repo.updateFieldsFn = func(_ context.Context, _ uint, fields map[string]interface{}) error {
		written = fields
		return nil
	}
	posts := noopPostRepo()
	posts.idsByAuthorFn = func(_ context.Context, _ uint) ([]uint, error) { return []uint{3, 4}, nil }
	svc := NewIdentityService(repo, posts, plainHasher{})
	ctx := context.Background()

	bio := "  hello  "
	user, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 7, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"bio": "hello"}, written)
	assert.Equal(t, []uint{3, 4}, user.PostIDs)

	long := strings.Repeat("x", 501)
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 7, Bio: &long})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.UpdateAvatar(ctx, 7, "")
	assertCode(t, err, models.CodeValidation)
}
