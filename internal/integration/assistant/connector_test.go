package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
	pkgRetry "github.com/futig/style-backend/internal/pkg/retry"
	"github.com/go-chi/chi/v5"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAssistantsAPI emulates the few Assistants endpoints the connector calls
type fakeAssistantsAPI struct {
	mu           sync.Mutex
	failSubmits  int
	runStatus    string
	lastError    map[string]string
	messages     []map[string]any
	submitBodies []map[string]any
}

func (f *fakeAssistantsAPI) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/threads/runs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failSubmits > 0 {
			f.failSubmits--
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "upstream hiccup", "type": "server_error"},
			})
			return
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.submitBodies = append(f.submitBodies, body)

		writeJSON(w, http.StatusOK, map[string]any{
			"id": "run_1", "object": "thread.run", "thread_id": "thread_1", "status": "queued",
		})
	})

	r.Get("/threads/{thread}/runs/{run}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if chi.URLParam(r, "run") != "run_1" {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"message": "No run found", "type": "invalid_request_error"},
			})
			return
		}

		run := map[string]any{
			"id": "run_1", "object": "thread.run", "thread_id": chi.URLParam(r, "thread"), "status": f.runStatus,
		}
		if f.lastError != nil {
			run["last_error"] = f.lastError
		}
		writeJSON(w, http.StatusOK, run)
	})

	r.Get("/threads/{thread}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": f.messages})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func textMessage(role, text string, createdAt int) map[string]any {
	return map[string]any{
		"id":         "msg_" + text,
		"object":     "thread.message",
		"created_at": createdAt,
		"thread_id":  "thread_1",
		"role":       role,
		"content": []map[string]any{
			{"type": "text", "text": map[string]any{"value": text, "annotations": []any{}}},
		},
	}
}

func newTestConnector(t *testing.T, api *fakeAssistantsAPI) *Connector {
	t.Helper()

	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)

	return NewConnector(config.AssistantConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
		},
		APIKey:  "test-key",
		BaseURL: srv.URL,
		BodyID:  "asst_body",
		StyleID: "asst_style",
		ChatID:  "asst_chat",
		Retry:   pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}, zap.NewNop())
}

func TestConnector_SubmitPollFetch(t *testing.T) {
	api := &fakeAssistantsAPI{
		runStatus: "completed",
		messages: []map[string]any{
			textMessage("user", "prompt", 1),
			textMessage("assistant", "older", 2),
			textMessage("assistant", " {\"body_type\":\"wave\"} ", 3),
		},
	}
	c := newTestConnector(t, api)
	ctx := context.Background()

	schema := &entity.ResponseSchema{Name: "body_diagnosis", Strict: true, Schema: map[string]any{"type": "object"}}
	handle, err := c.Submit(ctx, &entity.RunRequest{Assistant: entity.AssistantBody, Prompt: "hello", Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, "thread_1", handle.ThreadID)
	assert.Equal(t, "run_1", handle.RunID)
	assert.Equal(t, entity.RunPending, handle.Status)

	require.Len(t, api.submitBodies, 1)
	assert.Equal(t, "asst_body", api.submitBodies[0]["assistant_id"])
	format, ok := api.submitBodies[0]["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])

	state, err := c.Poll(ctx, *handle)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, state.Status)

	text, err := c.FetchResult(ctx, *handle)
	require.NoError(t, err)
	assert.Equal(t, `{"body_type":"wave"}`, text)
}

func TestConnector_SubmitRetriesServerErrors(t *testing.T) {
	api := &fakeAssistantsAPI{failSubmits: 2, runStatus: "queued"}
	c := newTestConnector(t, api)

	handle, err := c.Submit(context.Background(), &entity.RunRequest{Assistant: entity.AssistantStyle, Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "run_1", handle.RunID)
	assert.Nil(t, api.submitBodies[0]["response_format"])
}

func TestConnector_SubmitGivesUpAfterAttempts(t *testing.T) {
	api := &fakeAssistantsAPI{failSubmits: 10}
	c := newTestConnector(t, api)

	_, err := c.Submit(context.Background(), &entity.RunRequest{Assistant: entity.AssistantChat, Prompt: "p"})
	require.ErrorIs(t, err, entity.ErrGatewayFailure)
	assert.Equal(t, 7, api.failSubmits)
}

func TestConnector_UnknownAssistant(t *testing.T) {
	c := newTestConnector(t, &fakeAssistantsAPI{})

	_, err := c.Submit(context.Background(), &entity.RunRequest{Assistant: "unknown", Prompt: "p"})
	require.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestConnector_PollFailedRunCarriesCause(t *testing.T) {
	api := &fakeAssistantsAPI{
		runStatus: "failed",
		lastError: map[string]string{"code": "server_error", "message": "model crashed"},
	}
	c := newTestConnector(t, api)

	state, err := c.Poll(context.Background(), entity.RunHandle{ThreadID: "thread_1", RunID: "run_1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RunFailed, state.Status)
	require.NotNil(t, state.LastError)
	assert.Equal(t, "server_error", state.LastError.Code)
	assert.Equal(t, "model crashed", state.LastError.Message)
}

func TestConnector_PollUnknownRun(t *testing.T) {
	c := newTestConnector(t, &fakeAssistantsAPI{runStatus: "completed"})

	_, err := c.Poll(context.Background(), entity.RunHandle{ThreadID: "thread_1", RunID: "run_x"})
	require.ErrorIs(t, err, entity.ErrRunNotFound)
}

func TestConnector_FetchWithoutAssistantMessage(t *testing.T) {
	api := &fakeAssistantsAPI{messages: []map[string]any{textMessage("user", "prompt", 1)}}
	c := newTestConnector(t, api)

	_, err := c.FetchResult(context.Background(), entity.RunHandle{ThreadID: "thread_1", RunID: "run_1"})
	require.ErrorIs(t, err, entity.ErrMalformedOutput)
}

func TestToRunStatus(t *testing.T) {
	cases := map[string]entity.RunStatus{
		"queued":          entity.RunPending,
		"in_progress":     entity.RunPending,
		"requires_action": entity.RunPending,
		"completed":       entity.RunCompleted,
		"failed":          entity.RunFailed,
		"incomplete":      entity.RunFailed,
		"cancelled":       entity.RunCancelled,
		"expired":         entity.RunExpired,
	}
	for in, want := range cases {
		assert.Equal(t, want, toRunStatus(openai.RunStatus(in)), in)
	}
}
