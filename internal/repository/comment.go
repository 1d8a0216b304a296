package repository

import (
	"context"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Append(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Append inserts a comment after re-checking, in the same transaction, that
// its post exists and that a parent, when given, is a top-level comment on
// that post. The inserted row is what places it in the post's comment list
// or the parent's reply list.
func (r *commentRepository) Append(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share locks hold off a concurrent delete of the post or parent
		// until the insert commits.
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").First(&post, comment.PostID).Error; err != nil {
			return storeError(err, "Post", comment.PostID)
		}

		if comment.ParentID != nil {
			var parent models.Comment
			err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
				Select("id", "post_id", "parent_id").First(&parent, *comment.ParentID).Error
			if err != nil {
				return storeError(err, "Comment", *comment.ParentID)
			}
			if parent.PostID != comment.PostID || parent.IsReply() {
				return models.NewNotFoundError("Comment", *comment.ParentID)
			}
		}

		return tx.Omit(clause.Associations).Create(comment).Error
	})
	return storeError(err, "Comment", comment.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, storeError(err, "Comment", id)
	}
	comment.AuthorSummary = comment.Author.Summary()
	return &comment, nil
}

// ListTopLevel returns the post's top-level comments newest first, each with
// its replies in creation order.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Replies.Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewUnavailableError(err)
	}

	for _, c := range comments {
		c.AuthorSummary = c.Author.Summary()
		c.ReplyIDs = make([]uint, 0, len(c.Replies))
		for i := range c.Replies {
			reply := &c.Replies[i]
			reply.AuthorSummary = reply.Author.Summary()
			reply.ReplyIDs = []uint{}
			c.ReplyIDs = append(c.ReplyIDs, reply.ID)
		}
	}
	return comments, nil
}

// DeleteCascade removes a comment and, for a top-level comment, its replies.
func (r *commentRepository) DeleteCascade(ctx context.Context, id uint) error {
	ctx, span := observability.StartSpan(ctx, "repository.DeleteCommentCascade",
		attribute.Int64("comment.id", int64(id)))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&target, id).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	err = storeError(err, "Comment", id)
	observability.EndSpan(span, err)
	return err
}
