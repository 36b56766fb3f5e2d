package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/futig/style-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

// SessionRepository defines the interface for conversation session storage
type SessionRepository interface {
	Create(ctx context.Context, state *entity.ConversationState) error
	Get(ctx context.Context, id string) (*entity.ConversationState, error)
	Update(ctx context.Context, state *entity.ConversationState) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*entity.ConversationState, error)
}

var _ SessionRepository = &SessionMemory{}

// SessionMemory keeps sessions in process memory with a TTL. Values are
// cloned on the way in and out so callers never share state.
type SessionMemory struct {
	cache *cache.Cache
}

func NewSessionMemory(ttl, cleanupInterval time.Duration) *SessionMemory {
	return &SessionMemory{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *SessionMemory) Create(_ context.Context, state *entity.ConversationState) error {
	if err := r.cache.Add(state.SessionID, state.Clone(), cache.DefaultExpiration); err != nil {
		return fmt.Errorf("create session %s: %w", state.SessionID, err)
	}
	return nil
}

func (r *SessionMemory) Get(_ context.Context, id string) (*entity.ConversationState, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	return v.(*entity.ConversationState).Clone(), nil
}

func (r *SessionMemory) Update(_ context.Context, state *entity.ConversationState) error {
	if err := r.cache.Replace(state.SessionID, state.Clone(), cache.DefaultExpiration); err != nil {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, state.SessionID)
	}
	return nil
}

func (r *SessionMemory) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.cache.Get(id); !ok {
		return false, nil
	}
	r.cache.Delete(id)
	return true, nil
}

// List returns live sessions ordered by creation time.
func (r *SessionMemory) List(_ context.Context) ([]*entity.ConversationState, error) {
	items := r.cache.Items()
	states := make([]*entity.ConversationState, 0, len(items))
	for _, item := range items {
		states = append(states, item.Object.(*entity.ConversationState).Clone())
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.Before(states[j].CreatedAt)
	})

	return states, nil
}
