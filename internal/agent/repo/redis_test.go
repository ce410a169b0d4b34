package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/agent-poc-v1/server/internal/core/error"
)

func newTestRepo(t *testing.T) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisConversationRepository(rdb, 0), mr
}

func TestCreateAndExists(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx, "3867", "account questions")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ok, err := r.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddMessagePreservesOrder(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx, "3867", "ordering")
	require.NoError(t, err)

	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("first")))
	require.NoError(t, r.AddMessage(ctx, id, schema.AssistantMessage("second", nil)))
	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("third")))

	history, err := r.LoadHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history.Messages, 3)
	assert.Equal(t, "first", history.Messages[0].Content)
	assert.Equal(t, "second", history.Messages[1].Content)
	assert.Equal(t, "third", history.Messages[2].Content)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)

	assert.Equal(t, "3867", history.Summary.UserID)
	assert.Equal(t, "ordering", history.Summary.Title)
	assert.Equal(t, 3, history.Summary.MessageCount)
}

func TestAddMessageUnknownConversation(t *testing.T) {
	r, _ := newTestRepo(t)

	err := r.AddMessage(context.Background(), "missing", schema.UserMessage("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
}

func TestLoadHistoryUnknownConversation(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.LoadHistory(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
}

func TestDelete(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx, "3867", "to delete")
	require.NoError(t, err)

	removed, err := r.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)

	summaries, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestListOrdersByLastActivity(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }
	first, err := r.Create(ctx, "3867", "older")
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(time.Minute) }
	second, err := r.Create(ctx, "5122", "newer")
	require.NoError(t, err)

	summaries, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second, summaries[0].ConversationID)
	assert.Equal(t, first, summaries[1].ConversationID)

	// activity on the older conversation moves it to the front
	r.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.NoError(t, r.AddMessage(ctx, first, schema.UserMessage("bump")))

	summaries, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first, summaries[0].ConversationID)
}

func TestCleanupRemovesOnlyStrictlyOlder(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	cutoff := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return cutoff.Add(-time.Hour) }
	stale, err := r.Create(ctx, "3867", "stale")
	require.NoError(t, err)

	// exactly at the cutoff stays
	r.now = func() time.Time { return cutoff }
	boundary, err := r.Create(ctx, "3867", "boundary")
	require.NoError(t, err)

	r.now = func() time.Time { return cutoff.Add(time.Hour) }
	fresh, err := r.Create(ctx, "5122", "fresh")
	require.NoError(t, err)

	removed, err := r.Cleanup(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ok, err := r.Exists(ctx, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Exists(ctx, boundary)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTTLApplied(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	r := NewRedisConversationRepository(rdb, time.Hour)
	ctx := context.Background()

	id, err := r.Create(ctx, "3867", "expiring")
	require.NoError(t, err)
	require.NoError(t, r.AddMessage(ctx, id, schema.UserMessage("hello")))

	assert.Greater(t, mr.TTL(r.metaKey(id)), time.Duration(0))
	assert.Greater(t, mr.TTL(r.messagesKey(id)), time.Duration(0))

	// expiry drops the conversation and List self-heals the index
	mr.FastForward(2 * time.Hour)
	summaries, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
