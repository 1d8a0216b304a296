package service

import (
	"context"
	"testing"

	"talkshalk/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	emailTakenFn    func(context.Context, string) (bool, error)
	usernameTakenFn func(context.Context, string) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFieldsFn  func(context.Context, uint, map[string]interface{}) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.emailTakenFn(ctx, email)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.usernameTakenFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, id, fields)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		emailTakenFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		usernameTakenFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		updateFieldsFn: func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getDetailedFn   func(context.Context, uint, uint) (*models.Post, error)
	listFn          func(context.Context, uint) ([]*models.Post, error)
	listByAuthorFn  func(context.Context, uint, uint) ([]*models.Post, error)
	idsByAuthorFn   func(context.Context, uint) ([]uint, error)
	toggleLikeFn    func(context.Context, uint, uint) (models.LikeResult, error)
	deleteCascadeFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetDetailed(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getDetailedFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, viewerID)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID, viewerID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, viewerID)
}
func (s *postRepoStub) IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	return s.idsByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (models.LikeResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		getDetailedFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		listFn:         func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn: func(_ context.Context, _, _ uint) ([]*models.Post, error) { return nil, nil },
		idsByAuthorFn:  func(_ context.Context, _ uint) ([]uint, error) { return []uint{}, nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (models.LikeResult, error) {
			return models.LikeResult{LikeCount: 1, Liked: true}, nil
		},
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	appendFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn  func(context.Context, uint) ([]*models.Comment, error)
	deleteCascadeFn func(context.Context, uint) error
}

func (s *commentRepoStub) Append(ctx context.Context, comment *models.Comment) error {
	return s.appendFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		appendFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1, PostID: 1}, nil
		},
		listTopLevelFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "hashed:" + secret, nil }
func (plainHasher) Matches(secret, digest string) bool { return digest == "hashed:"+secret }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
