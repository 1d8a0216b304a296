package models

import "time"

// Like records set membership of a user in a post's likedBy set.
// The unique index makes (UserID, PostID) a set, not a multiset.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
