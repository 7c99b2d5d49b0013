package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// livePost returns a post owned by user 1 that expires an hour after testNow.
func livePost() *Post {
	return &Post{
		ID:        42,
		Title:     "Concurrency in practice",
		Topics:    []Topic{TopicTech},
		Body:      "Sharing some notes.",
		OwnerID:   1,
		OwnerName: "Olga",
		Status:    StatusLive,
		CreatedAt: testNow.Add(-time.Hour),
		ExpiresAt: testNow.Add(time.Hour),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertVoteInvariants checks that the cached counters equal the set
// sizes and that no user holds both vote kinds.
func assertVoteInvariants(t *testing.T, p *Post) {
	t.Helper()
	likes, dislikes := 0, 0
	seen := make(map[uint]bool)
	for _, v := range p.Votes {
		assert.Falsef(t, seen[v.UserID], "user %d holds more than one vote", v.UserID)
		seen[v.UserID] = true
		if v.Kind == VoteLike {
			likes++
		} else {
			dislikes++
		}
	}
	assert.Equal(t, likes, p.LikesCount)
	assert.Equal(t, dislikes, p.DislikesCount)
	assert.False(t, seen[p.OwnerID], "owner must never hold a vote")
}

func TestResolveStatus(t *testing.T) {
	t.Parallel()

	expiry := testNow

	assert.Equal(t, StatusLive, ResolveStatus(expiry, testNow.Add(-time.Nanosecond)))
	// The expiry instant itself is already Expired.
	assert.Equal(t, StatusExpired, ResolveStatus(expiry, testNow))
	assert.Equal(t, StatusExpired, ResolveStatus(expiry, testNow.Add(time.Nanosecond)))
}

func TestRefreshStatus(t *testing.T) {
	t.Parallel()

	p := livePost()
	assert.False(t, p.RefreshStatus(testNow), "status already correct")
	assert.Equal(t, StatusLive, p.Status)

	assert.True(t, p.RefreshStatus(p.ExpiresAt), "drift detected at the expiry instant")
	assert.Equal(t, StatusExpired, p.Status)

	assert.False(t, p.RefreshStatus(p.ExpiresAt.Add(time.Minute)), "idempotent once corrected")
}

func TestApplyVote_RecordsAndCounts(t *testing.T) {
	t.Parallel()

	p := livePost()

	counts, err := p.ApplyVote(2, VoteLike, testNow)
	require.NoError(t, err)
	assert.Equal(t, VoteCounts{LikesCount: 1, DislikesCount: 0}, counts)
	assert.True(t, p.LikedBy(2))

	counts, err = p.ApplyVote(3, VoteDislike, testNow)
	require.NoError(t, err)
	assert.Equal(t, VoteCounts{LikesCount: 1, DislikesCount: 1}, counts)
	assert.True(t, p.DislikedBy(3))

	assertVoteInvariants(t, p)
}

func TestApplyVote_Toggle(t *testing.T) {
	t.Parallel()

	p := livePost()

	_, err := p.ApplyVote(2, VoteLike, testNow)
	require.NoError(t, err)

	// Switching to a dislike removes the like in the same call.
	counts, err := p.ApplyVote(2, VoteDislike, testNow)
	require.NoError(t, err)
	assert.Equal(t, VoteCounts{LikesCount: 0, DislikesCount: 1}, counts)
	assert.False(t, p.LikedBy(2))
	assert.True(t, p.DislikedBy(2))

	// And back again.
	counts, err = p.ApplyVote(2, VoteLike, testNow)
	require.NoError(t, err)
	assert.Equal(t, VoteCounts{LikesCount: 1, DislikesCount: 0}, counts)

	assertVoteInvariants(t, p)
}

func TestApplyVote_Duplicate(t *testing.T) {
	t.Parallel()

	p := livePost()

	_, err := p.ApplyVote(2, VoteLike, testNow)
	require.NoError(t, err)

	counts, err := p.ApplyVote(2, VoteLike, testNow)
	assertCode(t, err, CodeDuplicateVote)
	assert.Equal(t, VoteCounts{LikesCount: 1, DislikesCount: 0}, counts, "counts unchanged")
	assertVoteInvariants(t, p)
}

func TestApplyVote_SelfVote(t *testing.T) {
	t.Parallel()

	p := livePost()

	for _, kind := range []VoteKind{VoteLike, VoteDislike} {
		_, err := p.ApplyVote(p.OwnerID, kind, testNow)
		assertCode(t, err, CodeSelfVote)
	}
	assert.Empty(t, p.Votes)
}

func TestApplyVote_ExpiredGateWinsOverSelfVote(t *testing.T) {
	t.Parallel()

	p := livePost()
	afterExpiry := p.ExpiresAt.Add(time.Minute)

	// Precondition order: expiry is checked before the self-vote policy.
	_, err := p.ApplyVote(p.OwnerID, VoteLike, afterExpiry)
	assertCode(t, err, CodeExpired)

	_, err = p.ApplyVote(2, VoteDislike, afterExpiry)
	assertCode(t, err, CodeExpired)
	assert.Empty(t, p.Votes)
}

func TestApplyVote_InvariantsAcrossSequence(t *testing.T) {
	t.Parallel()

	p := livePost()
	ops := []struct {
		user uint
		kind VoteKind
	}{
		{2, VoteLike}, {3, VoteDislike}, {2, VoteDislike}, {4, VoteLike},
		{3, VoteLike}, {4, VoteLike}, {2, VoteDislike}, {5, VoteDislike},
	}
	for _, op := range ops {
		_, _ = p.ApplyVote(op.user, op.kind, testNow)
		assertVoteInvariants(t, p)
	}

	assert.Equal(t, 2, p.LikesCount)
	assert.Equal(t, 2, p.DislikesCount)
	assert.True(t, p.LikedBy(3))
	assert.True(t, p.LikedBy(4))
	assert.True(t, p.DislikedBy(2))
	assert.True(t, p.DislikedBy(5))
}

func TestAppendComment(t *testing.T) {
	t.Parallel()

	p := livePost()
	actor := Identity{UserID: 3, Name: "Mary"}

	comment, err := p.AppendComment(actor, "  first!  ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "first!", comment.Text, "text is trimmed")
	assert.Equal(t, actor.UserID, comment.UserID)
	assert.Equal(t, actor.Name, comment.UserName)
	assert.Equal(t, testNow, comment.CreatedAt)
	require.Len(t, p.Comments, 1)

	first := p.Comments[0]
	_, err = p.AppendComment(Identity{UserID: 4, Name: "Nick"}, "second", testNow.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, p.Comments, 2)
	assert.Equal(t, first, p.Comments[0], "existing comments are never mutated")
}

func TestAppendComment_OwnerAllowed(t *testing.T) {
	t.Parallel()

	p := livePost()
	// Unlike voting, owners may comment on their own posts.
	_, err := p.AppendComment(p.Owner(), "replying to myself", testNow)
	require.NoError(t, err)
	assert.Len(t, p.Comments, 1)
}

func TestAppendComment_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		code string
	}{
		{"empty", "", CodeValidation},
		{"whitespace only", "   \n\t ", CodeValidation},
		{"too long", strings.Repeat("x", 501), CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := livePost()
			_, err := p.AppendComment(Identity{UserID: 2, Name: "Nick"}, tt.text, testNow)
			assertCode(t, err, tt.code)
			assert.Empty(t, p.Comments)
		})
	}

	t.Run("expired", func(t *testing.T) {
		p := livePost()
		_, err := p.AppendComment(Identity{UserID: 2, Name: "Nick"}, "late", p.ExpiresAt)
		assertCode(t, err, CodeExpired)
	})

	t.Run("exactly max length", func(t *testing.T) {
		p := livePost()
		_, err := p.AppendComment(Identity{UserID: 2, Name: "Nick"}, strings.Repeat("x", 500), testNow)
		require.NoError(t, err)
	})
}

func TestMoreActive(t *testing.T) {
	t.Parallel()

	base := func(likes, dislikes int, created time.Time) *Post {
		return &Post{LikesCount: likes, DislikesCount: dislikes, CreatedAt: created}
	}
	t1 := testNow.Add(-3 * time.Hour)
	t2 := testNow.Add(-2 * time.Hour)

	assert.True(t, MoreActive(base(5, 0, t1), base(4, 9, t2)), "likes dominate")
	assert.True(t, MoreActive(base(5, 2, t1), base(5, 1, t2)), "dislikes break like ties")
	assert.True(t, MoreActive(base(5, 2, t2), base(5, 2, t1)), "recency breaks full ties")
	assert.False(t, MoreActive(base(5, 2, t1), base(5, 2, t1)), "strict ordering")
}

func TestVoteKindOpposite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, VoteDislike, VoteLike.Opposite())
	assert.Equal(t, VoteLike, VoteDislike.Opposite())
}

func TestHasTopic(t *testing.T) {
	t.Parallel()

	p := &Post{Topics: []Topic{TopicTech, TopicHealth}}
	assert.True(t, p.HasTopic(TopicTech))
	assert.True(t, p.HasTopic(TopicHealth))
	assert.False(t, p.HasTopic(TopicSport))
}

func TestParseTopicAndStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"Politics", "Health", "Sport", "Tech"} {
		topic, err := ParseTopic(raw)
		require.NoError(t, err)
		assert.Equal(t, Topic(raw), topic)
	}
	_, err := ParseTopic("Finance")
	assertCode(t, err, CodeValidation)
	_, err = ParseTopic("tech")
	assertCode(t, err, CodeValidation)

	_, err = ParseStatus("Live")
	require.NoError(t, err)
	_, err = ParseStatus("Dead")
	assertCode(t, err, CodeValidation)
}
