package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/futig/style-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const defaultMockPolls = 2

const mockDiagnosis = "```json\n" + `{
  "body_type": "straight",
  "type_description": "A solid upper body with a firm, three-dimensional frame.",
  "detailed_features": "Thick torso, high waist position, firm skin texture.",
  "attraction_points": "Healthy, confident silhouette and neat shoulder line.",
  "recommended_styles": "Simple basics, straight-cut slacks, V-neck knits.",
  "avoid_styles": "Heavy ruffles, oversized layered outfits.",
  "styling_fixes": "Open the neckline and keep the waist lightly defined.",
  "styling_tips": null
}` + "\n```"

const mockChat = `{"isSuccess": true, "selected": "straight", "message": "Your answer matches the straight frame.", "nextQuestion": null}`

const mockContent = "## Styling guide\n\nFocus on clean lines and well-fitted basics. Pick straight trousers and V-neck tops for everyday looks."

// MockConnector is an in-process gateway that completes every run after a fixed number of polls
type MockConnector struct {
	mu              sync.Mutex
	runs            map[string]*mockRun
	pollsToComplete int
	logger          *zap.Logger
}

type mockRun struct {
	threadID string
	kind     entity.AssistantKind
	polls    int
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		runs:            make(map[string]*mockRun),
		pollsToComplete: defaultMockPolls,
		logger:          logger,
	}
}

// WithPollsToComplete sets how many polls a run stays pending
func (m *MockConnector) WithPollsToComplete(n int) *MockConnector {
	m.pollsToComplete = n
	return m
}

func (m *MockConnector) Submit(ctx context.Context, req *entity.RunRequest) (*entity.RunHandle, error) {
	ctxzap.Info(ctx, "[MOCK] submitting assistant run", zap.String("assistant", string(req.Assistant)))

	m.mu.Lock()
	defer m.mu.Unlock()

	run := &mockRun{threadID: "thread_mock_" + uuid.NewString(), kind: req.Assistant}
	runID := "run_mock_" + uuid.NewString()
	m.runs[runID] = run

	return &entity.RunHandle{ThreadID: run.threadID, RunID: runID, Status: entity.RunPending}, nil
}

func (m *MockConnector) Poll(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, err := m.lookup(handle)
	if err != nil {
		return nil, err
	}

	run.polls++
	if run.polls >= m.pollsToComplete {
		return &entity.RunState{Status: entity.RunCompleted}, nil
	}

	ctxzap.Debug(ctx, "[MOCK] run still pending", zap.Int("polls", run.polls))
	return &entity.RunState{Status: entity.RunPending}, nil
}

func (m *MockConnector) FetchResult(ctx context.Context, handle entity.RunHandle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, err := m.lookup(handle)
	if err != nil {
		return "", err
	}

	ctxzap.Info(ctx, "[MOCK] fetching assistant result", zap.String("assistant", string(run.kind)))

	switch run.kind {
	case entity.AssistantBody:
		return mockDiagnosis, nil
	case entity.AssistantChat:
		return mockChat, nil
	default:
		return mockContent, nil
	}
}

func (m *MockConnector) lookup(handle entity.RunHandle) (*mockRun, error) {
	run, ok := m.runs[handle.RunID]
	if !ok || run.threadID != handle.ThreadID {
		return nil, fmt.Errorf("%w: %s/%s", entity.ErrRunNotFound, handle.ThreadID, handle.RunID)
	}
	return run, nil
}
