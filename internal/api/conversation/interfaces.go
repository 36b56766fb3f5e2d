package conversation

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
)

type ConversationUsecase interface {
	Start(ctx context.Context, questions []entity.Question, prefs map[string]any) (*entity.ConversationState, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID *int, answer string) (*entity.ConversationState, bool, error)
	Skip(ctx context.Context, sessionID string) (*entity.ConversationState, error)
	GetState(ctx context.Context, sessionID string) (*entity.ConversationState, error)
	ListSessions(ctx context.Context) ([]entity.SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

type DiagnosisUsecase interface {
	DiagnoseSession(ctx context.Context, sessionID string) (*entity.SoftDiagnosis, error)
}
