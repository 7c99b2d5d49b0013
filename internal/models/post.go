package models

import (
	"strings"
	"time"
)

// Post is the aggregate the lifecycle engine operates on. Core fields
// (title, topics, body, owner, timestamps) are fixed at creation; votes
// and comments mutate until the post expires. LikesCount, DislikesCount
// and Status are cached columns, always recomputable from Votes and
// ExpiresAt respectively.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Topics        []Topic   `gorm:"serializer:json;not null" json:"topics"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	OwnerID       uint      `gorm:"not null;index" json:"-"`
	OwnerName     string    `gorm:"not null" json:"-"`
	Status        Status    `gorm:"not null;index" json:"status"`
	LikesCount    int       `gorm:"not null;default:0" json:"likesCount"`
	DislikesCount int       `gorm:"not null;default:0" json:"dislikesCount"`
	Version       int       `gorm:"not null;default:0" json:"-"`
	Votes         []Vote    `gorm:"foreignKey:PostID" json:"-"`
	Comments      []Comment `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expiresAt"`
}

// Owner returns the identity snapshot captured at creation.
func (p *Post) Owner() Identity {
	return Identity{UserID: p.OwnerID, Name: p.OwnerName}
}

// Counts returns the current cached vote counters.
func (p *Post) Counts() VoteCounts {
	return VoteCounts{LikesCount: p.LikesCount, DislikesCount: p.DislikesCount}
}

// VoteOf returns the user's current vote on this post, if any.
func (p *Post) VoteOf(userID uint) (VoteKind, bool) {
	for i := range p.Votes {
		if p.Votes[i].UserID == userID {
			return p.Votes[i].Kind, true
		}
	}
	return "", false
}

// LikedBy reports whether the user currently holds a like on this post.
func (p *Post) LikedBy(userID uint) bool {
	k, ok := p.VoteOf(userID)
	return ok && k == VoteLike
}

// DislikedBy reports whether the user currently holds a dislike on this post.
func (p *Post) DislikedBy(userID uint) bool {
	k, ok := p.VoteOf(userID)
	return ok && k == VoteDislike
}

// RefreshStatus recomputes the cached status from ExpiresAt and reports
// whether the stored value drifted. Callers persist the correction
// separately; gate decisions always use the freshly resolved value.
func (p *Post) RefreshStatus(now time.Time) bool {
	resolved := ResolveStatus(p.ExpiresAt, now)
	if p.Status == resolved {
		return false
	}
	p.Status = resolved
	return true
}

// ApplyVote applies a like or dislike from actingUserID, enforcing the
// preconditions in order: the post must still be live, owners cannot
// vote on their own post, and repeating the identical kind is rejected
// rather than silently ignored. Holding the opposite kind toggles it
// (the old vote is removed, then the new one added) so a user is never
// counted in both sets.
func (p *Post) ApplyVote(actingUserID uint, kind VoteKind, now time.Time) (VoteCounts, error) {
	if ResolveStatus(p.ExpiresAt, now) == StatusExpired {
		return p.Counts(), NewExpiredError()
	}
	if actingUserID == p.OwnerID {
		return p.Counts(), NewSelfVoteError()
	}
	if current, ok := p.VoteOf(actingUserID); ok {
		if current == kind {
			return p.Counts(), NewDuplicateVoteError(kind)
		}
		// Toggle: drop the opposite vote before recording the new one.
		p.removeVote(actingUserID)
	}
	p.Votes = append(p.Votes, Vote{PostID: p.ID, UserID: actingUserID, Kind: kind, CreatedAt: now})
	p.recountVotes()
	return p.Counts(), nil
}

// AppendComment validates and appends a comment from the acting
// identity. Owners may comment on their own posts; only expiry gates
// the operation. The appended record snapshots the identity and
// timestamps it with now.
func (p *Post) AppendComment(actor Identity, text string, now time.Time) (*Comment, error) {
	if ResolveStatus(p.ExpiresAt, now) == StatusExpired {
		return nil, NewExpiredError()
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinCommentLen {
		return nil, NewValidationError("Comment text is required")
	}
	if len(trimmed) > MaxCommentLen {
		return nil, NewValidationError("Comment too long (max 500 characters)")
	}
	p.Comments = append(p.Comments, Comment{
		PostID:    p.ID,
		UserID:    actor.UserID,
		UserName:  actor.Name,
		Text:      trimmed,
		CreatedAt: now,
	})
	return &p.Comments[len(p.Comments)-1], nil
}

// HasTopic reports whether the post is tagged with the given topic.
func (p *Post) HasTopic(topic Topic) bool {
	for _, t := range p.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

func (p *Post) removeVote(userID uint) {
	for i := range p.Votes {
		if p.Votes[i].UserID == userID {
			p.Votes = append(p.Votes[:i], p.Votes[i+1:]...)
			break
		}
	}
	p.recountVotes()
}

// recountVotes rebuilds the cached counters from the vote set so they
// can never drift from the sets they summarize.
func (p *Post) recountVotes() {
	likes, dislikes := 0, 0
	for i := range p.Votes {
		if p.Votes[i].Kind == VoteLike {
			likes++
		} else {
			dislikes++
		}
	}
	p.LikesCount = likes
	p.DislikesCount = dislikes
}

// MoreActive reports whether a ranks strictly above b in the
// most-active ordering: likes desc, then dislikes desc, then most
// recent creation.
func MoreActive(a, b *Post) bool {
	if a.LikesCount != b.LikesCount {
		return a.LikesCount > b.LikesCount
	}
	if a.DislikesCount != b.DislikesCount {
		return a.DislikesCount > b.DislikesCount
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// CreatePostRequest defines the request body for creating a post.
// The validator tags carry the storage-invariant floor (title >= 2);
// the stricter creation policy (title >= 6) is enforced by the service.
type CreatePostRequest struct {
	Title            string   `json:"title" validate:"required,min=2,max=120"`
	Topics           []string `json:"topics" validate:"required,min=1"`
	Body             string   `json:"body" validate:"required,max=2000"`
	ExpiresAt        string   `json:"expiresAt,omitempty"`
	ExpiresInMinutes int      `json:"expiresInMinutes,omitempty" validate:"omitempty,min=1,max=10080"`
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}
