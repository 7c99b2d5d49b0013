package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix       = "post:%d"
	MostActiveKeyPrefix = "topic:%s:most-active"
)

const (
	// PostTTL is short because a post's interaction counts move while it
	// is live; status is always re-resolved after a cache load anyway.
	PostTTL       = 2 * time.Minute
	MostActiveTTL = 30 * time.Second
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func MostActiveKey(topic string) string {
	return fmt.Sprintf(MostActiveKeyPrefix, topic)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateTopics drops the per-topic ranking keys for every topic the
// mutated post is tagged with.
func InvalidateTopics(ctx context.Context, topics []string) {
	for _, t := range topics {
		Invalidate(ctx, MostActiveKey(t))
	}
}
