package conversation

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, state *entity.ConversationState) error
	Get(ctx context.Context, id string) (*entity.ConversationState, error)
	Update(ctx context.Context, state *entity.ConversationState) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*entity.ConversationState, error)
}
