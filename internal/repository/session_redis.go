package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/futig/style-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

var _ SessionRepository = &SessionRedis{}

// SessionRedis stores sessions as JSON documents so several replicas can share them.
type SessionRedis struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewSessionRedis(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *SessionRedis {
	return &SessionRedis{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *SessionRedis) key(id string) string {
	return r.keyPrefix + id
}

func (r *SessionRedis) Create(ctx context.Context, state *entity.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(state.SessionID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("create session: %s already exists", state.SessionID)
	}

	return nil
}

func (r *SessionRedis) Get(ctx context.Context, id string) (*entity.ConversationState, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return decodeState(data)
}

func (r *SessionRedis) Update(ctx context.Context, state *entity.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetXX(ctx, r.key(state.SessionID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, state.SessionID)
	}

	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRedis) List(ctx context.Context) ([]*entity.ConversationState, error) {
	var states []*entity.ConversationState

	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// expired between SCAN and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get session %s: %w", iter.Val(), err)
		}

		state, err := decodeState(data)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.Before(states[j].CreatedAt)
	})

	return states, nil
}

func decodeState(data []byte) (*entity.ConversationState, error) {
	var state entity.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if state.Answers == nil {
		state.Answers = make(map[int]entity.AnswerValue)
	}
	return &state, nil
}
