package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is authored by exactly one User. AuthorID never changes after creation.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"-"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageRef string `json:"image"`
	// ImageURL is resolved from ImageRef by the blob store; not persisted.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`

	// Top-level comments only, in creation order.
	Comments []Comment `gorm:"foreignKey:PostID" json:"-"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"-"`

	// Populated at read time.
	AuthorSummary AuthorSummary    `gorm:"-" json:"author"`
	LikedBy       []uint           `gorm:"-" json:"liked_by"`
	LikeCount     int              `gorm:"-" json:"like_count"`
	Liked         bool             `gorm:"-" json:"liked"`
	CommentIDs    []uint           `gorm:"-" json:"comment_ids"`
	CommentList   []CommentSummary `gorm:"-" json:"comments"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	LikeCount int  `json:"likes"`
	Liked     bool `json:"isLiked"`
}
