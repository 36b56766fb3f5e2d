package conversation

import (
	"context"
	"fmt"

	"github.com/futig/style-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ConversationUsecase runs the question state machine against the session store
type ConversationUsecase struct {
	repo      SessionRepository
	machine   *Machine
	questions []entity.Question
	locks     *keyLocks
}

// NewUsecase creates a new conversation use case. defaultQuestions is used
// for sessions started without a custom question list.
func NewUsecase(
	repo SessionRepository,
	machine *Machine,
	defaultQuestions []entity.Question,
) *ConversationUsecase {
	return &ConversationUsecase{
		repo:      repo,
		machine:   machine,
		questions: defaultQuestions,
		locks:     newKeyLocks(),
	}
}

// Start creates a session and asks its first question
func (uc *ConversationUsecase) Start(ctx context.Context, questions []entity.Question, prefs map[string]any) (*entity.ConversationState, error) {
	if len(questions) == 0 {
		questions = uc.questions
	}

	state, err := uc.machine.Start(uuid.New().String(), questions, prefs)
	if err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}

	if err := uc.repo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "conversation started",
		zap.String("session_id", state.SessionID),
		zap.Int("question_count", len(state.Questions)),
	)

	return state, nil
}

// SubmitAnswer applies an answer to the pending question. The returned flag is
// false when the answer targeted a question that is no longer pending.
func (uc *ConversationUsecase) SubmitAnswer(ctx context.Context, sessionID string, questionID *int, answer string) (
	*entity.ConversationState, bool, error,
) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	state, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	accepted, err := uc.machine.Submit(state, questionID, answer)
	if err != nil {
		return nil, false, fmt.Errorf("submit answer: %w", err)
	}

	if !accepted {
		ctxzap.Warn(ctx, "stale answer discarded",
			zap.Intp("question_id", questionID),
			zap.Int("current_question_index", state.CurrentQuestionIndex),
		)
		return state, false, nil
	}

	if err := uc.repo.Update(ctx, state); err != nil {
		return nil, false, fmt.Errorf("update session: %w", err)
	}

	ctxzap.Info(ctx, "answer processed",
		zap.String("status", string(state.Status)),
		zap.Int("retry_count", state.RetryCount),
		zap.String("progress", state.Progress()),
	)

	return state, true, nil
}

// Skip moves past a question whose retries are exhausted
func (uc *ConversationUsecase) Skip(ctx context.Context, sessionID string) (*entity.ConversationState, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	state, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := uc.machine.Skip(state); err != nil {
		return nil, fmt.Errorf("skip question: %w", err)
	}

	if err := uc.repo.Update(ctx, state); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	ctxzap.Info(ctx, "question skipped", zap.String("progress", state.Progress()))

	return state, nil
}

// GetState reads a session without changing it
func (uc *ConversationUsecase) GetState(ctx context.Context, sessionID string) (*entity.ConversationState, error) {
	state, err := uc.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return state, nil
}

func (uc *ConversationUsecase) ListSessions(ctx context.Context) ([]entity.SessionSummary, error) {
	states, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]entity.SessionSummary, 0, len(states))
	for _, s := range states {
		summaries = append(summaries, entity.SessionSummary{
			SessionID:   s.SessionID,
			Status:      s.Status,
			Progress:    s.Progress(),
			IsCompleted: s.IsCompleted,
			CreatedAt:   s.CreatedAt,
		})
	}

	return summaries, nil
}

// DeleteSession removes a session and reports whether it existed
func (uc *ConversationUsecase) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	existed, err := uc.repo.Delete(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	ctxzap.Info(ctx, "session deleted", zap.Bool("existed", existed))

	return existed, nil
}
