package logger

import (
	"context"

	"github.com/futig/style-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields returns a context whose logger carries fields
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction names the flow being served, e.g. "SubmitAnswer"
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

func WithSession(ctx context.Context, sessionID string) context.Context {
	return AddFields(ctx, zap.String("session_id", sessionID))
}

// WithRun tags log lines with the remote thread and run
func WithRun(ctx context.Context, handle entity.RunHandle) context.Context {
	return AddFields(ctx,
		zap.String("thread_id", handle.ThreadID),
		zap.String("run_id", handle.RunID),
	)
}
