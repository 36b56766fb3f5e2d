package handlers

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
)

// ConversationUsecase is the part of the survey flow the bot drives
type ConversationUsecase interface {
	Start(ctx context.Context, questions []entity.Question, prefs map[string]any) (*entity.ConversationState, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID *int, answer string) (*entity.ConversationState, bool, error)
	Skip(ctx context.Context, sessionID string) (*entity.ConversationState, error)
	GetState(ctx context.Context, sessionID string) (*entity.ConversationState, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

type DiagnosisUsecase interface {
	DiagnoseSession(ctx context.Context, sessionID string) (*entity.SoftDiagnosis, error)
	RunResult(ctx context.Context, handle entity.RunHandle) (*entity.DiagnosisResult, error)
}
