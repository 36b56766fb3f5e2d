package diagnosis

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
)

type DiagnosisUsecase interface {
	Diagnose(ctx context.Context, req *entity.DiagnosisRequest) (*entity.DiagnosisResult, error)
	DiagnoseSoft(ctx context.Context, req *entity.DiagnosisRequest) (*entity.SoftDiagnosis, error)
	RunStatus(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error)
	RunResult(ctx context.Context, handle entity.RunHandle) (*entity.DiagnosisResult, error)
	CreateContent(ctx context.Context, req *entity.ContentRequest) (string, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
}
