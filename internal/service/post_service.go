// Package service implements the business rules of the Mingle API: the
// post lifecycle engine and account management.
package service

import (
	"context"
	"strings"
	"time"

	"mingle/internal/cache"
	"mingle/internal/middleware"
	"mingle/internal/models"
	"mingle/internal/repository"
)

// maxSaveAttempts bounds the fetch-decide-save retry cycle when the
// store reports a concurrent write.
const maxSaveAttempts = 3

const (
	minTitleLen = 6
	maxTitleLen = 120
	maxBodyLen  = 2000

	minExpiryMinutes = 1
	maxExpiryMinutes = 10080 // 7 days

	maxHistoryLimit = 50
)

// DefaultHistoryLimit is the page size history endpoints fall back to
// when the client does not specify a limit.
const DefaultHistoryLimit = 20

// PostService orchestrates the post lifecycle: creation, status
// resolution, voting, commenting and the per-topic ranking queries.
// The clock is injected so expiration behavior is testable.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	Owner            models.Identity
	Title            string
	Topics           []string
	Body             string
	ExpiresAt        string // RFC3339, optional
	ExpiresInMinutes int    // used when ExpiresAt is empty
}

type ListPostsInput struct {
	Topic  string // optional
	Status string // optional
	Limit  int
	Skip   int
}

func NewPostService(postRepo repository.PostRepository, now func() time.Time) *PostService {
	if now == nil {
		now = time.Now
	}
	return &PostService{
		postRepo: postRepo,
		now:      now,
	}
}

// CreatePost validates the creation policy and persists a new post.
// The title floor here (6) is intentionally stricter than the storage
// invariant (2) enforced at the HTTP edge; the two layers are
// independent by design.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if len(title) < minTitleLen {
		return nil, models.NewValidationError("Title too short (min 6 characters)")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 120 characters)")
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 2000 characters)")
	}

	if len(in.Topics) == 0 {
		return nil, models.NewValidationError("At least one topic is required")
	}
	topics := make([]models.Topic, 0, len(in.Topics))
	for _, raw := range in.Topics {
		topic, err := models.ParseTopic(raw)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	now := s.now()
	expiresAt, err := resolveExpiration(in, now)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     title,
		Topics:    topics,
		Body:      body,
		OwnerID:   in.Owner.UserID,
		OwnerName: in.Owner.Name,
		// Computed, not assumed: a caller-supplied past expiresAt
		// yields an Expired post rather than a lie in the cache.
		Status:    models.ResolveStatus(expiresAt, now),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidateTopics(ctx, topicStrings(post.Topics))
	return post, nil
}

// resolveExpiration computes the expiration timestamp from either an
// explicit RFC3339 value or a minutes-from-now offset.
func resolveExpiration(in CreatePostInput, now time.Time) (time.Time, error) {
	if in.ExpiresAt != "" {
		ts, err := time.Parse(time.RFC3339, in.ExpiresAt)
		if err != nil {
			return time.Time{}, models.NewInvalidExpirationError("expiresAt must be a valid RFC3339 timestamp")
		}
		return ts, nil
	}
	if in.ExpiresInMinutes == 0 {
		return time.Time{}, models.NewValidationError("Either expiresAt or expiresInMinutes is required")
	}
	if in.ExpiresInMinutes < minExpiryMinutes || in.ExpiresInMinutes > maxExpiryMinutes {
		return time.Time{}, models.NewValidationError("expiresInMinutes must be between 1 and 10080")
	}
	return now.Add(time.Duration(in.ExpiresInMinutes) * time.Minute), nil
}

// GetPost fetches a post with its status freshly resolved. A drifted
// stored status is reconciled as a separate, idempotent write; the
// returned post always carries the resolved value.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post *models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		var fetchErr error
		post, fetchErr = s.postRepo.GetByID(ctx, id)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if post.RefreshStatus(s.now()) {
		s.reconcileStatus(ctx, post)
	}
	return post, nil
}

// ListPosts returns posts filtered by optional topic and status. Status
// filtering happens in the store against expires_at, so results cannot
// disagree with the resolver; the returned records also get their
// status re-resolved for display.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	var topic *models.Topic
	if in.Topic != "" {
		t, err := models.ParseTopic(in.Topic)
		if err != nil {
			return nil, err
		}
		topic = &t
	}
	var status *models.Status
	if in.Status != "" {
		st, err := models.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	now := s.now()
	posts, err := s.postRepo.List(ctx, topic, status, now, in.Limit, in.Skip)
	if err != nil {
		return nil, err
	}
	// Listing is read-heavy; drifted rows self-correct on their next
	// individual read instead of fanning out reconcile writes here.
	for _, p := range posts {
		p.RefreshStatus(now)
	}
	return posts, nil
}

// Like records a like from the acting user on the post.
func (s *PostService) Like(ctx context.Context, actingUserID, postID uint) (models.VoteCounts, error) {
	return s.vote(ctx, actingUserID, postID, models.VoteLike)
}

// Dislike records a dislike from the acting user on the post.
func (s *PostService) Dislike(ctx context.Context, actingUserID, postID uint) (models.VoteCounts, error) {
	return s.vote(ctx, actingUserID, postID, models.VoteDislike)
}

// vote runs the fetch-decide-save cycle for a vote, retrying a bounded
// number of times when the optimistic save loses a race. Gate and
// policy failures are final and never retried.
func (s *PostService) vote(ctx context.Context, actingUserID, postID uint, kind models.VoteKind) (models.VoteCounts, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return models.VoteCounts{}, err
		}

		now := s.now()
		drifted := post.RefreshStatus(now)
		counts, err := post.ApplyVote(actingUserID, kind, now)
		if err != nil {
			if drifted {
				s.reconcileStatus(ctx, post)
			}
			return counts, err
		}

		if err := s.postRepo.Save(ctx, post, post.Version); err != nil {
			if models.CodeOf(err) == models.CodeConflict {
				middleware.SaveConflicts.WithLabelValues("vote").Inc()
				continue
			}
			return models.VoteCounts{}, err
		}

		s.invalidatePost(ctx, post)
		return counts, nil
	}
	return models.VoteCounts{}, models.NewConflictError("post", postID)
}

// Comment validates and appends a comment, with the same bounded retry
// discipline as voting. Returns the appended record and the post's new
// comment count.
func (s *PostService) Comment(ctx context.Context, actor models.Identity, postID uint, text string) (*models.Comment, int, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return nil, 0, err
		}

		now := s.now()
		drifted := post.RefreshStatus(now)
		comment, err := post.AppendComment(actor, text, now)
		if err != nil {
			if drifted {
				s.reconcileStatus(ctx, post)
			}
			return nil, 0, err
		}

		if err := s.postRepo.Save(ctx, post, post.Version); err != nil {
			if models.CodeOf(err) == models.CodeConflict {
				middleware.SaveConflicts.WithLabelValues("comment").Inc()
				continue
			}
			return nil, 0, err
		}

		s.invalidatePost(ctx, post)
		return comment, len(post.Comments), nil
	}
	return nil, 0, models.NewConflictError("post", postID)
}

// MostActive returns the single post with the highest engagement for
// the topic: most likes, ties broken by most dislikes, then by most
// recent creation. Posts of any status participate.
func (s *PostService) MostActive(ctx context.Context, topicRaw string) (*models.Post, error) {
	topic, err := models.ParseTopic(topicRaw)
	if err != nil {
		return nil, err
	}

	var post *models.Post
	err = cache.Aside(ctx, cache.MostActiveKey(string(topic)), &post, cache.MostActiveTTL, func() error {
		posts, fetchErr := s.postRepo.FindRanked(ctx, topic)
		if fetchErr != nil {
			return fetchErr
		}
		if len(posts) == 0 {
			return models.NewNoPostsError(topic)
		}
		top := posts[0]
		for _, p := range posts[1:] {
			if models.MoreActive(p, top) {
				top = p
			}
		}
		post = top
		return nil
	})
	if err != nil {
		return nil, err
	}

	if post.RefreshStatus(s.now()) {
		s.reconcileStatus(ctx, post)
	}
	return post, nil
}

// ExpiredHistory returns expired posts for the topic, most recently
// expired first. The limit is clamped to [0, 50] and skip floored at 0.
func (s *PostService) ExpiredHistory(ctx context.Context, topicRaw string, limit, skip int) ([]*models.Post, error) {
	topic, err := models.ParseTopic(topicRaw)
	if err != nil {
		return nil, err
	}

	if limit < 0 {
		limit = 0
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if skip < 0 {
		skip = 0
	}
	if limit == 0 {
		return []*models.Post{}, nil
	}

	posts, err := s.postRepo.FindExpired(ctx, topic, s.now(), limit, skip)
	if err != nil {
		return nil, err
	}
	// The query guarantees expiry; align the cached column in the
	// response without extra writes.
	for _, p := range posts {
		p.Status = models.StatusExpired
	}
	return posts, nil
}

// reconcileStatus persists a drifted status cache. The write is
// advisory: reads already returned the resolved value, so a failure
// here is logged and swallowed.
func (s *PostService) reconcileStatus(ctx context.Context, post *models.Post) {
	if err := s.postRepo.ReconcileStatus(ctx, post.ID, post.Status); err != nil {
		middleware.Logger.Warn("status reconcile failed",
			"post_id", post.ID, "status", string(post.Status), "error", err.Error())
	}
	cache.InvalidatePost(ctx, post.ID)
}

func (s *PostService) invalidatePost(ctx context.Context, post *models.Post) {
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateTopics(ctx, topicStrings(post.Topics))
}

func topicStrings(topics []models.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}
