package models

import "time"

// Comment is an append-only record attached to a post. Comments are
// never updated or deleted, and are only ever read through their post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"-"`
	UserID    uint      `gorm:"not null" json:"userId"`
	UserName  string    `gorm:"not null" json:"userName"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	// MinCommentLen and MaxCommentLen bound the trimmed comment text.
	MinCommentLen = 1
	MaxCommentLen = 500
)
