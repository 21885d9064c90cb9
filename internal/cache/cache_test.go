package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheable(t *testing.T) {
	var (
		c     = New(16, time.Minute)
		ctx   = context.Background()
		calls int
	)
	load := Cacheable(c, Key("count:%s", "u1"), func(context.Context) (int, error) {
		calls++
		return 42, nil
	})

	for range 3 {
		v, err := load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
}

func TestCacheable_ErrorsNotCached(t *testing.T) {
	var (
		c     = New(16, time.Minute)
		ctx   = context.Background()
		calls int
	)
	load := Cacheable(c, "k", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	_, err := load(ctx)
	require.Error(t, err)

	v, err := load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCacheable_Expires(t *testing.T) {
	var (
		c     = New(16, 20*time.Millisecond)
		ctx   = context.Background()
		calls int
	)
	load := Cacheable(c, "k", func(context.Context) (int, error) {
		calls++
		return calls, nil
	})

	v, _ := load(ctx)
	assert.Equal(t, 1, v)

	assert.Eventually(t, func() bool {
		v, _ := load(ctx)
		return v == 2
	}, time.Second, 10*time.Millisecond)
}

func TestStale(t *testing.T) {
	var (
		c     = New(16, time.Minute)
		ctx   = context.Background()
		count = 1
	)
	load := Cacheable(c, "count", func(context.Context) (int, error) {
		return count, nil
	})
	bump := Stale(c, "count", func(context.Context) error {
		count++
		return nil
	})

	v, _ := load(ctx)
	assert.Equal(t, 1, v)

	require.NoError(t, bump(ctx))
	v, _ = load(ctx)
	assert.Equal(t, 2, v)
}

func TestObserve(t *testing.T) {
	var (
		c      = New(16, time.Minute)
		ctx    = context.Background()
		hits   = map[string]int{}
		misses = map[string]int{}
	)
	c.Observe(func(name string, hit bool) {
		if hit {
			hits[name]++
			return
		}
		misses[name]++
	})

	load := Cacheable(c, Key("popular:%s", "post"), func(context.Context) (int, error) {
		return 1, nil
	})
	for range 3 {
		_, err := load(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"popular": 2}, hits)
	assert.Equal(t, map[string]int{"popular": 1}, misses)
}

func TestStale_LoadDuringMutation(t *testing.T) {
	var (
		c     = New(16, time.Minute)
		ctx   = context.Background()
		count = 1
	)
	load := Cacheable(c, "count", func(context.Context) (int, error) {
		return count, nil
	})
	bump := Stale(c, "count", func(ctx context.Context) error {
		// Another request reads while the write is in flight
		v, err := load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		count++
		return nil
	})

	require.NoError(t, bump(ctx))
	v, err := load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestStale_FailedMutation(t *testing.T) {
	var (
		c   = New(16, time.Minute)
		ctx = context.Background()
	)
	c.lru.Add("count", 1)

	err := Stale(c, "count", func(context.Context) error {
		return errors.New("boom")
	})(ctx)
	require.Error(t, err)

	_, ok := c.lru.Get("count")
	assert.False(t, ok)
}
