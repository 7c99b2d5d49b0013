package models

import "time"

// VoteKind is the kind of vote a user holds on a post.
type VoteKind string

const (
	VoteLike    VoteKind = "like"
	VoteDislike VoteKind = "dislike"
)

// Opposite returns the other vote kind.
func (k VoteKind) Opposite() VoteKind {
	if k == VoteLike {
		return VoteDislike
	}
	return VoteLike
}

// Vote records a user's current vote on a post.
// There is at most one row per (post, user), so a user can never appear
// in both the liked and disliked sets at once.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_voter" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_voter" json:"userId"`
	Kind      VoteKind  `gorm:"not null" json:"kind"`
	CreatedAt time.Time `json:"-"`
}

// VoteCounts is the pair returned to callers after a vote is applied.
type VoteCounts struct {
	LikesCount    int `json:"likesCount"`
	DislikesCount int `json:"dislikesCount"`
}
