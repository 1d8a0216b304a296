package service

import (
	"context"
	"strings"
	"testing"

	"talkshalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.appendFn = func(_ context.Context, _ *models.Comment) error {
		t.Fatal("append must not run for invalid content")
		return nil
	}
	svc := NewThreadService(comments, noopPostRepo())
	ctx := context.Background()

	_, err := svc.AddComment(ctx, AddCommentInput{ActorID: 1, PostID: 1, Content: "   "})
	assertCode(t, err, models.CodeEmptyContent)

	_, err = svc.AddComment(ctx, AddCommentInput{ActorID: 1, PostID: 1, Content: strings.Repeat("x", 2001)})
	assertCode(t, err, models.CodeValidation)
}

func TestThreadService_AddComment_PassesParent(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	var appended *models.Comment
	comments.appendFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 11
		appended = c
		return nil
	}
	svc := NewThreadService(comments, noopPostRepo())

	parent := uint(4)
	got, err := svc.AddComment(context.Background(), AddCommentInput{
		ActorID: 2, PostID: 3, Content: " thanks ", ParentCommentID: &parent,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(11), got.ID)
	assert.Equal(t, "thanks", appended.Content)
	require.NotNil(t, appended.ParentID)
	assert.Equal(t, parent, *appended.ParentID)
}

func TestThreadService_AddComment_NotFoundPropagates(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.appendFn = func(_ context.Context, c *models.Comment) error {
		return models.NewNotFoundError("Comment", *c.ParentID)
	}
	svc := NewThreadService(comments, noopPostRepo())

	parent := uint(99)
	_, err := svc.AddComment(context.Background(), AddCommentInput{ActorID: 1, PostID: 1, Content: "hi", ParentCommentID: &parent})
	assertCode(t, err, models.CodeNotFound)
}

func TestThreadService_DeleteComment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, AuthorID: 7}, nil
	}
	deleted := []uint{}
	comments.deleteCascadeFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}
	svc := NewThreadService(comments, noopPostRepo())

	assertCode(t, svc.DeleteComment(ctx, 8, 1), models.CodeForbidden)
	assert.Empty(t, deleted)

	require.NoError(t, svc.DeleteComment(ctx, 7, 1))
	assert.Equal(t, []uint{1}, deleted)
}

func TestThreadService_ListForPost_MissingPost(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewThreadService(noopCommentRepo(), posts)

	_, err := svc.ListForPost(context.Background(), 3)
	assertCode(t, err, models.CodeNotFound)
}
