package service

import (
	"context"
	"log/slog"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/repository"
	"talkshalk/internal/validation"
)

type ContentService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	ActorID  uint
	Content  string
	ImageRef string
}

func NewContentService(postRepo repository.PostRepository, userRepo repository.UserRepository) *ContentService {
	return &ContentService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content, ok := validation.TrimContent(in.Content)
	if !ok {
		return nil, models.NewEmptyContentError()
	}
	if err := validation.ValidateLength("Post", content, validation.MaxPostLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		AuthorID: in.ActorID,
		Content:  content,
		ImageRef: in.ImageRef,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordMutation("post", "create")

	return s.postRepo.GetDetailed(ctx, post.ID, in.ActorID)
}

// ListAll returns every post newest first. viewerID may be zero for anonymous reads.
func (s *ContentService) ListAll(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, viewerID)
}

func (s *ContentService) ListByAuthor(ctx context.Context, userID, viewerID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthor(ctx, userID, viewerID)
}

func (s *ContentService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetDetailed(ctx, postID, viewerID)
}

// ToggleLike flips the actor's like on a post. Any authenticated actor may
// like any post, including their own.
func (s *ContentService) ToggleLike(ctx context.Context, actorID, postID uint) (models.LikeResult, error) {
	result, err := s.postRepo.ToggleLike(ctx, actorID, postID)
	if err != nil {
		return models.LikeResult{}, err
	}
	observability.RecordLikeToggle(result.Liked)
	return result, nil
}

func (s *ContentService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !CanMutate(actorID, post.AuthorID) {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		return err
	}

	observability.RecordMutation("post", "delete")
	observability.Logger.InfoContext(ctx, "post deleted",
		slog.Uint64("post_id", uint64(postID)),
		slog.Uint64("actor_id", uint64(actorID)),
	)
	return nil
}
