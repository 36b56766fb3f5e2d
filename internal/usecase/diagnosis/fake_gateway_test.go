package diagnosis

import (
	"context"
	"fmt"
	"sync"

	"github.com/futig/style-backend/internal/entity"
)

// fakeGateway reports RunPending for pendingPolls polls and then finalStatus
type fakeGateway struct {
	mu           sync.Mutex
	pendingPolls int
	finalStatus  entity.RunStatus
	lastError    *entity.RunError
	output       string
	submitErr    error

	requests []*entity.RunRequest
	polls    map[string]int
}

func newFakeGateway(output string) *fakeGateway {
	return &fakeGateway{
		finalStatus: entity.RunCompleted,
		output:      output,
		polls:       make(map[string]int),
	}
}

func (g *fakeGateway) Submit(_ context.Context, req *entity.RunRequest) (*entity.RunHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.submitErr != nil {
		return nil, g.submitErr
	}
	g.requests = append(g.requests, req)
	n := len(g.requests)
	return &entity.RunHandle{
		ThreadID: fmt.Sprintf("thread_%d", n),
		RunID:    fmt.Sprintf("run_%d", n),
		Status:   entity.RunPending,
	}, nil
}

func (g *fakeGateway) Poll(_ context.Context, handle entity.RunHandle) (*entity.RunState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if handle.RunID == "unknown" {
		return nil, fmt.Errorf("%w: %s", entity.ErrRunNotFound, handle.RunID)
	}

	g.polls[handle.RunID]++
	if g.pendingPolls < 0 || g.polls[handle.RunID] <= g.pendingPolls {
		return &entity.RunState{Status: entity.RunPending}, nil
	}
	return &entity.RunState{Status: g.finalStatus, LastError: g.lastError}, nil
}

func (g *fakeGateway) FetchResult(_ context.Context, _ entity.RunHandle) (string, error) {
	return g.output, nil
}

func (g *fakeGateway) lastRequest() *entity.RunRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

type fakeSessions map[string]*entity.ConversationState

func (s fakeSessions) Get(_ context.Context, id string) (*entity.ConversationState, error) {
	state, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	return state.Clone(), nil
}
