package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/futig/style-backend/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChatPrefix = "style:chat:"

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(client, testChatPrefix, time.Minute), mr
}

func TestRedisStorage(t *testing.T) {
	s, mr := newRedisStorage(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)

	session := &ChatSession{
		UserID:     1,
		ChatID:     10,
		SessionID:  "abc",
		LastResult: &entity.DiagnosisResult{BodyType: "wave"},
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Set(ctx, session))
	assert.True(t, mr.Exists(testChatPrefix+"1"))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SessionID)
	assert.Equal(t, "wave", got.LastResult.BodyType)
	assert.True(t, session.CreatedAt.Equal(got.CreatedAt))

	// the manager works the same on top of redis
	m := NewManager(s)
	ok, err := m.BeginDiagnosis(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, 1))
	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestRedisStorage_Expires(t *testing.T) {
	s, mr := newRedisStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, &ChatSession{UserID: 7, ChatID: 70, SessionID: "x"}))
	assert.Equal(t, time.Minute, mr.TTL(testChatPrefix+"7"))

	mr.FastForward(time.Minute + time.Second)
	_, err := s.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestRedisStorage_CorruptValue(t *testing.T) {
	s, mr := newRedisStorage(t)

	require.NoError(t, mr.Set(testChatPrefix+"3", "not json"))
	_, err := s.Get(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChatNotFound)
}
