package diagnosis

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
)

// Gateway submits prompts to a remote assistant and tracks the resulting runs
type Gateway interface {
	Submit(ctx context.Context, req *entity.RunRequest) (*entity.RunHandle, error)
	Poll(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error)
	FetchResult(ctx context.Context, handle entity.RunHandle) (string, error)
}

// ResponseDecoder turns raw assistant text into a validated JSON object
type ResponseDecoder interface {
	Decode(raw string, schema *entity.ResponseSchema) (map[string]any, error)
}

type SessionReader interface {
	Get(ctx context.Context, id string) (*entity.ConversationState, error)
}
