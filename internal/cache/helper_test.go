package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"mingle/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestRedis wires the package client to an in-process server. Tests
// sharing the global client must not run in parallel.
func startTestRedis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, client, "client should connect to the test server")
	t.Cleanup(func() { client = nil })
	return mr
}

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetJSONGetJSON(t *testing.T) {
	startTestRedis(t)
	ctx := context.Background()

	in := cachedThing{Name: "hello", Count: 3}
	require.NoError(t, SetJSON(ctx, "thing:1", in, time.Minute))

	var out cachedThing
	found, err := GetJSON(ctx, "thing:1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	found, err = GetJSON(ctx, "thing:missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	startTestRedis(t)
	ctx := context.Background()

	t.Run("miss fetches and stores", func(t *testing.T) {
		fetches := 0
		var got cachedThing
		err := Aside(ctx, "aside:1", &got, time.Minute, func() error {
			fetches++
			got = cachedThing{Name: "fresh", Count: 1}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
		assert.Equal(t, "fresh", got.Name)

		// Second read is served from the cache.
		var again cachedThing
		err = Aside(ctx, "aside:1", &again, time.Minute, func() error {
			fetches++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
		assert.Equal(t, "fresh", again.Name)
	})

	t.Run("fetch failure propagates without storing", func(t *testing.T) {
		boom := errors.New("fetch failed")
		var got cachedThing
		err := Aside(ctx, "aside:2", &got, time.Minute, func() error {
			return boom
		})
		assert.ErrorIs(t, err, boom)

		found, err := GetJSON(ctx, "aside:2", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestAside_TTLExpiry(t *testing.T) {
	mr := startTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			*dest = cachedThing{Name: "v", Count: fetches}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "aside:ttl", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)

	mr.FastForward(2 * time.Minute)

	var second cachedThing
	require.NoError(t, Aside(ctx, "aside:ttl", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 2, fetches, "expired entry refetches")
}

func TestInvalidate(t *testing.T) {
	startTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(7), cachedThing{Name: "p"}, time.Minute))
	require.NoError(t, SetJSON(ctx, MostActiveKey("Tech"), cachedThing{Name: "t"}, time.Minute))
	require.NoError(t, SetJSON(ctx, MostActiveKey("Sport"), cachedThing{Name: "s"}, time.Minute))

	InvalidatePost(ctx, 7)
	InvalidateTopics(ctx, []string{"Tech", "Sport"})

	var out cachedThing
	for _, key := range []string{PostKey(7), MostActiveKey("Tech"), MostActiveKey("Sport")} {
		found, err := GetJSON(ctx, key, &out)
		require.NoError(t, err)
		assert.False(t, found, "key %s should be gone", key)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	client = nil
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "k", cachedThing{}, time.Minute))

	var out cachedThing
	found, err := GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	fetches := 0
	err = Aside(ctx, "k", &out, time.Minute, func() error {
		fetches++
		out = cachedThing{Name: "direct"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	Invalidate(ctx, "k")
}

func TestCommandErrorsAreCounted(t *testing.T) {
	mr := startTestRedis(t)
	ctx := context.Background()

	before := testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("get"))

	mr.SetError("backend unavailable")
	var out cachedThing
	_, err := GetJSON(ctx, "broken", &out)
	require.Error(t, err)

	after := testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("get"))
	assert.Equal(t, before+1, after, "failed GET increments the error counter")

	// A plain miss is not an error.
	mr.SetError("")
	missBefore := testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("get"))
	found, err := GetJSON(ctx, "absent", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, missBefore, testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("get")))
}
