// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. Password holds the bcrypt digest and is never serialized.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `gorm:"size:500" json:"bio"`
	Avatar    string         `json:"avatar"`
	PostIDs   []uint         `gorm:"-" json:"posts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicUser is the outward projection of a User.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// Public returns the fields that may leave the process.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Avatar:   u.Avatar,
	}
}

// AuthorSummary is the author population attached to posts and comments.
type AuthorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Summary returns the author summary for u.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
