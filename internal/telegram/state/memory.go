package state

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStorage keeps chat sessions in process memory; idle chats expire after ttl
type MemoryStorage struct {
	cache *cache.Cache
}

var _ Storage = &MemoryStorage{}

func NewMemoryStorage(ttl, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{cache: cache.New(ttl, cleanupInterval)}
}

func (s *MemoryStorage) Get(_ context.Context, userID int64) (*ChatSession, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, ErrChatNotFound
	}
	session := *v.(*ChatSession)
	return &session, nil
}

func (s *MemoryStorage) Set(_ context.Context, session *ChatSession) error {
	stored := *session
	s.cache.SetDefault(key(session.UserID), &stored)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
