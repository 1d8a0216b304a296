package repository

import (
	"context"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetDetailed(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, viewerID uint) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, viewerID uint) ([]*models.Post, error)
	IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
	ToggleLike(ctx context.Context, userID, postID uint) (models.LikeResult, error)
	DeleteCascade(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewUnavailableError(err)
	}
	return nil
}

// GetByID loads the bare post row, enough for existence and ownership checks.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, storeError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetDetailed(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, storeError(err, "Post", id)
	}
	populatePost(&post, viewerID)
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewUnavailableError(err)
	}
	for _, p := range posts {
		populatePost(p, viewerID)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewUnavailableError(err)
	}
	for _, p := range posts {
		populatePost(p, viewerID)
	}
	return posts, nil
}

// IDsByAuthor returns the author's post ids in creation order.
func (r *postRepository) IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewUnavailableError(err)
	}
	return ids, nil
}

// withDetails preloads everything a listing needs: author, likes, and the
// top-level comments with their authors and reply ids, all in id order.
func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("likes.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order("comments.id ASC")
		}).
		Preload("Comments.Author").
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "parent_id").Order("comments.id ASC")
		})
}

func populatePost(p *models.Post, viewerID uint) {
	p.AuthorSummary = p.Author.Summary()

	p.LikedBy = make([]uint, 0, len(p.Likes))
	p.Liked = false
	for _, l := range p.Likes {
		p.LikedBy = append(p.LikedBy, l.UserID)
		if viewerID != 0 && l.UserID == viewerID {
			p.Liked = true
		}
	}
	p.LikeCount = len(p.LikedBy)

	p.CommentIDs = make([]uint, 0, len(p.Comments))
	p.CommentList = make([]models.CommentSummary, 0, len(p.Comments))
	for i := range p.Comments {
		c := &p.Comments[i]
		replyIDs := make([]uint, 0, len(c.Replies))
		for _, reply := range c.Replies {
			replyIDs = append(replyIDs, reply.ID)
		}
		p.CommentIDs = append(p.CommentIDs, c.ID)
		p.CommentList = append(p.CommentList, models.CommentSummary{
			ID:        c.ID,
			Content:   c.Content,
			Author:    c.Author.Summary(),
			ReplyIDs:  replyIDs,
			CreatedAt: c.CreatedAt,
		})
	}
}

// ToggleLike flips the user's membership in the post's like set inside one
// transaction: a delete that removes nothing is followed by an insert that
// tolerates a concurrent insert of the same pair.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (models.LikeResult, error) {
	ctx, span := observability.StartSpan(ctx, "repository.ToggleLike",
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("user.id", int64(userID)),
	)
	var result models.LikeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes toggles on the same post.
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, postID).Error; err != nil {
			return storeError(err, "Post", postID)
		}

		removed := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.Like{UserID: userID, PostID: postID}
			created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if created.Error != nil {
				return created.Error
			}
			result.Liked = created.RowsAffected > 0
		}

		var count int64
		if err := tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		result.LikeCount = int(count)
		return nil
	})
	err = storeError(err, "Post", postID)
	observability.EndSpan(span, err)
	if err != nil {
		return models.LikeResult{}, err
	}
	return result, nil
}

// DeleteCascade removes the post together with its comments, replies and
// likes. Nothing is reported as deleted until every step has committed.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	ctx, span := observability.StartSpan(ctx, "repository.DeletePostCascade",
		attribute.Int64("post.id", int64(id)))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locked first so concurrent appends wait and then see the post gone.
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	err = storeError(err, "Post", id)
	observability.EndSpan(span, err)
	return err
}
