package service

import (
	"context"
	"log/slog"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/repository"
	"talkshalk/internal/validation"
)

type ThreadService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// AddCommentInput creates a top-level comment, or a reply when
// ParentCommentID names a top-level comment on the same post.
type AddCommentInput struct {
	ActorID         uint
	PostID          uint
	Content         string
	ParentCommentID *uint
}

func NewThreadService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *ThreadService {
	return &ThreadService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *ThreadService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	content, ok := validation.TrimContent(in.Content)
	if !ok {
		return nil, models.NewEmptyContentError()
	}
	if err := validation.ValidateLength("Comment", content, validation.MaxCommentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		AuthorID: in.ActorID,
		PostID:   in.PostID,
		ParentID: in.ParentCommentID,
		Content:  content,
	}
	if err := s.commentRepo.Append(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordMutation("comment", "create")

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	created.ReplyIDs = []uint{}
	return created, nil
}

// ListForPost returns the post's top-level comments newest first with their
// replies in creation order.
func (s *ThreadService) ListForPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListTopLevel(ctx, postID)
}

// DeleteComment removes an author's comment. Replies of a top-level comment
// go with it.
func (s *ThreadService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !CanMutate(actorID, comment.AuthorID) {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.DeleteCascade(ctx, commentID); err != nil {
		return err
	}

	observability.RecordMutation("comment", "delete")
	observability.Logger.InfoContext(ctx, "comment deleted",
		slog.Uint64("comment_id", uint64(commentID)),
		slog.Bool("reply", comment.IsReply()),
	)
	return nil
}
