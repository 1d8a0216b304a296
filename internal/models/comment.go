package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is either a top-level comment (ParentID nil) or a reply to a top-level
// comment on the same post. Replies never have replies of their own.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"-"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	ParentID *uint  `gorm:"index" json:"parent_comment_id"`
	Content  string `gorm:"type:text;not null" json:"content"`

	// Replies in creation order; always empty on a reply.
	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies"`

	AuthorSummary AuthorSummary `gorm:"-" json:"author"`
	ReplyIDs      []uint        `gorm:"-" json:"reply_ids"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether c hangs off a parent comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentSummary is the comment population attached to a post listing.
type CommentSummary struct {
	ID        uint          `json:"id"`
	Content   string        `json:"content"`
	Author    AuthorSummary `json:"author"`
	ReplyIDs  []uint        `json:"reply_ids"`
	CreatedAt time.Time     `json:"created_at"`
}
