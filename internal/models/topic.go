package models

import "time"

// Topic is one of the fixed categories a post can be tagged with.
type Topic string

const (
	TopicPolitics Topic = "Politics"
	TopicHealth   Topic = "Health"
	TopicSport    Topic = "Sport"
	TopicTech     Topic = "Tech"
)

// Topics is the closed enumeration of valid topics.
var Topics = []Topic{TopicPolitics, TopicHealth, TopicSport, TopicTech}

// ParseTopic validates a raw topic value against the fixed enumeration.
func ParseTopic(raw string) (Topic, error) {
	for _, t := range Topics {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", NewValidationError("Invalid topic: must be one of Politics, Health, Sport, Tech")
}

// Status is the lifecycle state of a post, derived from its expiration.
type Status string

const (
	StatusLive    Status = "Live"
	StatusExpired Status = "Expired"
)

// ParseStatus validates a raw status filter value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusLive, StatusExpired:
		return Status(raw), nil
	}
	return "", NewValidationError("Invalid status: must be Live or Expired")
}

// ResolveStatus derives a post's status from its expiration time.
// The expiry instant itself counts as Expired.
func ResolveStatus(expiresAt, now time.Time) Status {
	if now.Before(expiresAt) {
		return StatusLive
	}
	return StatusExpired
}
