package snapshot_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"taman-digital/internal/domain"
	"taman-digital/internal/snapshot"
)

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func runCacheSuite(t *testing.T, fresh func(t *testing.T) snapshot.Cache) {
	ctx := context.Background()

	t.Run("get on empty key returns nil", func(t *testing.T) {
		cache := fresh(t)

		snap, err := cache.Get(ctx, "sess-1", "post-1")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("keeps at most three snapshots newest first", func(t *testing.T) {
		cache := fresh(t)

		for i := 1; i <= 4; i++ {
			_, err := cache.Save(ctx, "sess-1", "post-1", domain.Draft{Content: fmt.Sprintf("v%d", i)})
			require.NoError(t, err)
		}

		history, err := cache.History(ctx, "sess-1", "post-1")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "v4", history[0].Draft.Content)
		assert.Equal(t, "v3", history[1].Draft.Content)
		assert.Equal(t, "v2", history[2].Draft.Content)

		latest, err := cache.Get(ctx, "sess-1", "post-1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "v4", latest.Draft.Content)
		assert.True(t, latest.Timestamp.After(history[1].Timestamp))
	})

	t.Run("clear drops only the given key", func(t *testing.T) {
		cache := fresh(t)

		_, err := cache.Save(ctx, "sess-1", "post-1", domain.Draft{Title: "a"})
		require.NoError(t, err)
		_, err = cache.Save(ctx, "sess-1", domain.NewDraftKey, domain.Draft{Title: "b"})
		require.NoError(t, err)

		require.NoError(t, cache.Clear(ctx, "sess-1", "post-1"))

		gone, err := cache.Get(ctx, "sess-1", "post-1")
		require.NoError(t, err)
		assert.Nil(t, gone)

		kept, err := cache.Get(ctx, "sess-1", domain.NewDraftKey)
		require.NoError(t, err)
		require.NotNil(t, kept)
		assert.Equal(t, "b", kept.Draft.Title)
	})

	t.Run("sessions do not see each other", func(t *testing.T) {
		cache := fresh(t)

		_, err := cache.Save(ctx, "sess-1", domain.NewDraftKey, domain.Draft{Title: "mine"})
		require.NoError(t, err)

		other, err := cache.Get(ctx, "sess-2", domain.NewDraftKey)
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("clear scope drops every key of the session", func(t *testing.T) {
		cache := fresh(t)

		_, err := cache.Save(ctx, "sess-1", "post-1", domain.Draft{Title: "a"})
		require.NoError(t, err)
		_, err = cache.Save(ctx, "sess-1", "post-2", domain.Draft{Title: "b"})
		require.NoError(t, err)
		_, err = cache.Save(ctx, "sess-2", "post-1", domain.Draft{Title: "c"})
		require.NoError(t, err)

		require.NoError(t, cache.ClearScope(ctx, "sess-1"))

		for _, key := range []string{"post-1", "post-2"} {
			snap, err := cache.Get(ctx, "sess-1", key)
			require.NoError(t, err)
			assert.Nil(t, snap, key)
		}
		survivor, err := cache.Get(ctx, "sess-2", "post-1")
		require.NoError(t, err)
		assert.NotNil(t, survivor)
	})
}

func TestMemory(t *testing.T) {
	runCacheSuite(t, func(t *testing.T) snapshot.Cache {
		return snapshot.NewMemory(snapshot.WithClock(stepClock(time.Now())))
	})
}

func TestMemory_WithHistory(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory(snapshot.WithHistory(1))

	_, err := cache.Save(ctx, "s", "k", domain.Draft{Content: "old"})
	require.NoError(t, err)
	_, err = cache.Save(ctx, "s", "k", domain.Draft{Content: "new"})
	require.NoError(t, err)

	history, err := cache.History(ctx, "s", "k")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "new", history[0].Draft.Content)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()

	tags := []string{"Desain"}
	_, err := cache.Save(ctx, "s", "k", domain.Draft{Tags: tags})
	require.NoError(t, err)
	tags[0] = "changed"

	snap, err := cache.Get(ctx, "s", "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"Desain"}, snap.Draft.Tags)
}

func TestMemory_WithTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	cache := snapshot.NewMemory(
		snapshot.WithTTL(time.Hour),
		snapshot.WithClock(func() time.Time { return now }),
	)

	_, err := cache.Save(ctx, "abandoned", domain.NewDraftKey, domain.Draft{Content: "lupa"})
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = cache.Save(ctx, "active", domain.NewDraftKey, domain.Draft{Content: "v1"})
	require.NoError(t, err)

	t.Run("unexpired scope is readable", func(t *testing.T) {
		snap, err := cache.Get(ctx, "abandoned", domain.NewDraftKey)
		require.NoError(t, err)
		require.NotNil(t, snap)
	})

	t.Run("expired scope reads as empty", func(t *testing.T) {
		now = now.Add(31 * time.Minute)

		snap, err := cache.Get(ctx, "abandoned", domain.NewDraftKey)
		require.NoError(t, err)
		assert.Nil(t, snap)

		history, err := cache.History(ctx, "abandoned", domain.NewDraftKey)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("save refreshes the deadline and sweeps expired scopes", func(t *testing.T) {
		_, err := cache.Save(ctx, "abandoned-too", "post-1", domain.Draft{Content: "x"})
		require.NoError(t, err)
		now = now.Add(45 * time.Minute)

		_, err = cache.Save(ctx, "active", domain.NewDraftKey, domain.Draft{Content: "v2"})
		require.NoError(t, err)

		assert.Equal(t, 2, cache.Scopes())
		now = now.Add(30 * time.Minute)
		_, err = cache.Save(ctx, "active", domain.NewDraftKey, domain.Draft{Content: "v3"})
		require.NoError(t, err)
		assert.Equal(t, 1, cache.Scopes(), "only the active session remains")

		history, err := cache.History(ctx, "active", domain.NewDraftKey)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "v3", history[0].Draft.Content)
	})
}

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}()

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	runCacheSuite(t, func(t *testing.T) snapshot.Cache {
		require.NoError(t, client.FlushDB(ctx).Err())
		return snapshot.NewRedis(client, time.Hour, snapshot.WithClock(stepClock(time.Now())))
	})

	t.Run("keys expire with the session ttl", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		cache := snapshot.NewRedis(client, time.Minute)

		_, err := cache.Save(ctx, "sess-ttl", "post-1", domain.Draft{Title: "a"})
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "snapshot:sess-ttl:post-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
