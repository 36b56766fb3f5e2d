package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/style-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// WaitConfig bounds how long a request waits on a remote run.
type WaitConfig struct {
	PollInterval time.Duration
	// Timeout is the hard wait used by synchronous operations.
	Timeout time.Duration
	// SoftWait is the short wait after which a pending handle is returned.
	SoftWait time.Duration
}

// await polls the run until it is terminal or limit elapses. A run that is still
// running when the limit is hit is reported with RunPending and a nil error.
func (uc *DiagnosisUsecase) await(ctx context.Context, handle entity.RunHandle, limit time.Duration) (*entity.RunState, error) {
	waitCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	ticker := time.NewTicker(uc.wait.PollInterval)
	defer ticker.Stop()

	pending := &entity.RunState{Status: entity.RunPending}
	polls := 0
	for {
		polls++
		state, err := uc.gateway.Poll(waitCtx, handle)
		if err != nil {
			// deadline hit mid-request
			if waitCtx.Err() != nil && ctx.Err() == nil {
				return pending, nil
			}
			return nil, err
		}
		if state.Status.IsTerminal() {
			ctxzap.Debug(ctx, "run reached terminal status",
				zap.String("run_id", handle.RunID),
				zap.String("status", string(state.Status)),
				zap.Int("polls", polls),
			)
			return state, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return pending, nil
		case <-ticker.C:
		}
	}
}

// awaitHard waits up to the full timeout and fails when the run is still pending.
func (uc *DiagnosisUsecase) awaitHard(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error) {
	state, err := uc.await(ctx, handle, uc.wait.Timeout)
	if err != nil {
		return nil, err
	}
	if !state.Status.IsTerminal() {
		ctxzap.Warn(ctx, "assistant run timed out",
			zap.String("thread_id", handle.ThreadID),
			zap.String("run_id", handle.RunID),
			zap.Duration("timeout", uc.wait.Timeout),
		)
		return nil, fmt.Errorf("%w: %s", entity.ErrGatewayTimeout, uc.messages.timeout)
	}
	return state, nil
}

// finish fetches and decodes the output of a terminal run. schema may be nil
// for free-form text, in which case the raw text is returned under "text".
func (uc *DiagnosisUsecase) finish(
	ctx context.Context, handle entity.RunHandle, state *entity.RunState, schema *entity.ResponseSchema,
) (map[string]any, error) {
	if state.Status != entity.RunCompleted {
		gwErr := &entity.GatewayError{Status: state.Status}
		if state.LastError != nil {
			gwErr.Code = state.LastError.Code
			gwErr.Message = state.LastError.Message
		}
		ctxzap.Error(ctx, "assistant run failed",
			zap.String("run_id", handle.RunID),
			zap.Error(gwErr),
		)
		return nil, gwErr
	}

	raw, err := uc.gateway.FetchResult(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("fetch run result: %w", err)
	}

	if schema == nil {
		return map[string]any{textKey: raw}, nil
	}

	obj, err := uc.decoder.Decode(raw, schema)
	if err != nil {
		var malformed *entity.MalformedOutputError
		if errors.As(err, &malformed) {
			ctxzap.Error(ctx, "malformed assistant output",
				zap.String("run_id", handle.RunID),
				zap.String("schema", schema.Name),
				zap.String("raw", malformed.Raw),
				zap.Error(malformed.Err),
			)
		}
		return nil, err
	}

	return obj, nil
}
