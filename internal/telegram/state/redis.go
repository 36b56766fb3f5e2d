package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists chat sessions so a restarted bot keeps each user's survey
type RedisStorage struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ Storage = &RedisStorage{}

func NewRedisStorage(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisStorage) key(userID int64) string {
	return s.keyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStorage) Get(ctx context.Context, userID int64) (*ChatSession, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat session: %w", err)
	}

	var session ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode chat session %d: %w", userID, err)
	}
	return &session, nil
}

func (s *RedisStorage) Set(ctx context.Context, session *ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode chat session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set chat session: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}
