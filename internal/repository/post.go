// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mingle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository is the persistence boundary of the post lifecycle
// engine. Save is an optimistic update: it fails with a CONFLICT error
// when the stored version changed since the fetch that preceded the
// mutation. Queries that depend on status derive it from expires_at
// and the supplied now, never from the cached status column.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, topic *models.Topic, status *models.Status, now time.Time, limit, offset int) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post, expectedVersion int) error
	ReconcileStatus(ctx context.Context, id uint, status models.Status) error
	FindRanked(ctx context.Context, topic models.Topic) ([]*models.Post, error)
	FindExpired(ctx context.Context, topic models.Topic, now time.Time, limit, offset int) ([]*models.Post, error)
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
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withAggregate(r.db.WithContext(ctx)).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, models.NewStoreError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, topic *models.Topic, status *models.Status, now time.Time, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withAggregate(r.db.WithContext(ctx))
	if topic != nil {
		q = applyTopicFilter(q, *topic)
	}
	if status != nil {
		q = applyStatusFilter(q, *status, now)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// Save persists the mutated aggregate guarded by expectedVersion. The
// post row, its vote set and any newly appended comments are written in
// one transaction; a version mismatch rolls everything back.
func (r *postRepository) Save(ctx context.Context, post *models.Post, expectedVersion int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND version = ?", post.ID, expectedVersion).
			Updates(map[string]interface{}{
				"likes_count":    post.LikesCount,
				"dislikes_count": post.DislikesCount,
				"status":         post.Status,
				"version":        expectedVersion + 1,
			})
		if res.Error != nil {
			return models.NewStoreError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("post", post.ID)
		}

		if err := r.saveVotes(tx, post); err != nil {
			return err
		}
		if err := r.saveNewComments(tx, post); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	post.Version = expectedVersion + 1
	return nil
}

// saveVotes reconciles the post_votes rows with the in-memory vote set:
// upsert on the (post_id, user_id) key, then drop rows for users no
// longer in the set.
func (r *postRepository) saveVotes(tx *gorm.DB, post *models.Post) error {
	if len(post.Votes) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "created_at"}),
		}).Create(&post.Votes).Error; err != nil {
			return models.NewStoreError(err)
		}
	}

	del := tx.Where("post_id = ?", post.ID)
	if len(post.Votes) > 0 {
		userIDs := make([]uint, len(post.Votes))
		for i := range post.Votes {
			userIDs[i] = post.Votes[i].UserID
		}
		del = del.Where("user_id NOT IN ?", userIDs)
	}
	if err := del.Delete(&models.Vote{}).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

// saveNewComments inserts appended comments (ID still zero). Existing
// comments are append-only and never rewritten.
func (r *postRepository) saveNewComments(tx *gorm.DB, post *models.Post) error {
	var appended []*models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == 0 {
			appended = append(appended, &post.Comments[i])
		}
	}
	if len(appended) == 0 {
		return nil
	}
	if err := tx.Create(appended).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

// ReconcileStatus updates the advisory status cache after a read
// observed drift. It is idempotent and deliberately unguarded: status
// is derivable, so last-writer-wins is safe.
func (r *postRepository) ReconcileStatus(ctx context.Context, id uint, status models.Status) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

// FindRanked returns every post tagged with the topic, ordered by the
// most-active chain (likes desc, dislikes desc, newest first). The
// service layer re-applies the same selection in memory; the ORDER BY
// keeps the common case a single-row scan.
func (r *postRepository) FindRanked(ctx context.Context, topic models.Topic) ([]*models.Post, error) {
	var posts []*models.Post
	err := applyTopicFilter(r.withAggregate(r.db.WithContext(ctx)), topic).
		Order("likes_count DESC, dislikes_count DESC, created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

func (r *postRepository) FindExpired(ctx context.Context, topic models.Topic, now time.Time, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := applyTopicFilter(r.withAggregate(r.db.WithContext(ctx)), topic).
		Where("expires_at <= ?", now).
		Order("expires_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// withAggregate preloads the full aggregate: votes plus comments in
// append order.
func (r *postRepository) withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		})
}

// applyTopicFilter matches posts whose topics array contains the topic.
// Topics are serialized to JSON, so containment runs on a jsonb cast.
func applyTopicFilter(db *gorm.DB, topic models.Topic) *gorm.DB {
	return db.Where("topics::jsonb @> ?", fmt.Sprintf(`[%q]`, string(topic)))
}

// applyStatusFilter derives the status predicate from expires_at so the
// filter can never disagree with the resolver, even when the cached
// status column is stale.
func applyStatusFilter(db *gorm.DB, status models.Status, now time.Time) *gorm.DB {
	if status == models.StatusLive {
		return db.Where("expires_at > ?", now)
	}
	return db.Where("expires_at <= ?", now)
}
