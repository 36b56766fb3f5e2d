package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/style-backend/internal/api"
	conversationapi "github.com/futig/style-backend/internal/api/conversation"
	diagnosisapi "github.com/futig/style-backend/internal/api/diagnosis"
	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/integration/assistant"
	"github.com/futig/style-backend/internal/pkg/decoder"
	"github.com/futig/style-backend/internal/pkg/formatter"
	"github.com/futig/style-backend/internal/pkg/validator"
	"github.com/futig/style-backend/internal/repository"
	"github.com/futig/style-backend/internal/usecase/conversation"
	"github.com/futig/style-backend/internal/usecase/diagnosis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serverOptions struct {
	polls    int
	softWait time.Duration
}

func newTestServer(t *testing.T, opts serverOptions) *httptest.Server {
	t.Helper()

	catalog, err := config.LoadCatalog("")
	require.NoError(t, err)
	questions, err := config.LoadQuestions("")
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:     10 * time.Second,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimitCfg:       config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}

	logger := zap.NewNop()
	repo := repository.NewSessionMemory(time.Hour, time.Minute)
	machine := conversation.NewMachine(conversation.NewRuleEngine(), conversation.MachineConfig{MaxRetries: 3})
	conversationUC := conversation.NewUsecase(repo, machine, questions)

	gateway := assistant.NewMockConnector(logger).WithPollsToComplete(opts.polls)
	diagnosisUC, err := diagnosis.NewUsecase(gateway, decoder.New(), repo, catalog, diagnosis.WaitConfig{
		PollInterval: 10 * time.Millisecond,
		Timeout:      2 * time.Second,
		SoftWait:     opts.softWait,
	})
	require.NoError(t, err)

	v := validator.NewValidator()
	router := api.SetupRouter(cfg,
		diagnosisapi.NewHandler(diagnosisUC, formatter.NewFactory(), v),
		conversationapi.NewHandler(conversationUC, diagnosisUC, v),
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

var diagnosisBody = map[string]any{
	"answers": []string{"broad shoulders", "firm muscles"},
	"height":  170,
	"weight":  60,
	"gender":  "female",
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestChatbotStatus(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/chatbot/status", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "active", "service": "your-mode-chatbot"}, body)
}

func TestConversationFlow(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 2, softWait: 2 * time.Second})
	base := srv.URL + "/chat-agent"

	var started entity.ConversationDTO
	resp := doJSON(t, http.MethodPost, base+"/start", nil, &started)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StatusAsking, started.Status)
	assert.Equal(t, "answer", started.RequiresAction)
	assert.Equal(t, "1/3", started.Progress)
	require.NotNil(t, started.CurrentQuestion)
	assert.Equal(t, 1, started.CurrentQuestion.ID)
	id := started.SessionID

	var early entity.ErrorResponse
	resp = doJSON(t, http.MethodPost, base+"/session/"+id+"/diagnose", nil, &early)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var retry entity.ConversationDTO
	resp = doJSON(t, http.MethodPost, base+"/answer", map[string]any{"session_id": id, "answer": "300"}, &retry)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StatusRetry, retry.Status)
	assert.Equal(t, "retry", retry.RequiresAction)
	assert.Equal(t, 1, retry.RetryCount)
	assert.Equal(t, entity.GuideHint, retry.GuideType)
	assert.NotEmpty(t, retry.AdditionalGuide)
	require.NotNil(t, retry.Accepted)
	assert.True(t, *retry.Accepted)

	var stale entity.ConversationDTO
	resp = doJSON(t, http.MethodPost, base+"/answer", map[string]any{"session_id": id, "answer": "female", "question_id": 2}, &stale)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, stale.Accepted)
	assert.False(t, *stale.Accepted)
	assert.Equal(t, "1/3", stale.Progress)

	for _, answer := range []string{"170", "female", "60"} {
		resp = doJSON(t, http.MethodPost, base+"/answer", map[string]any{"session_id": id, "answer": answer}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var done entity.ConversationDTO
	resp = doJSON(t, http.MethodGet, base+"/status/"+id, nil, &done)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, done.IsCompleted)
	assert.Equal(t, "none", done.RequiresAction)
	assert.Nil(t, done.CurrentQuestion)
	assert.Len(t, done.Answers, 3)

	resp = doJSON(t, http.MethodPost, base+"/answer", map[string]any{"session_id": id, "answer": "61"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var history entity.HistoryDTO
	resp = doJSON(t, http.MethodGet, base+"/history/"+id, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.EventCompleted, history.Events[len(history.Events)-1].Type)

	var result entity.DiagnosisResult
	resp = doJSON(t, http.MethodPost, base+"/session/"+id+"/diagnose", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "straight", result.BodyType)
	assert.Empty(t, result.StylingTips)
}

func TestConversationPrefixesShareSessions(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	var started entity.ConversationDTO
	doJSON(t, http.MethodPost, srv.URL+"/conversation/start", map[string]any{}, &started)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/conversation/status/"+started.SessionID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var list entity.SessionListDTO
	doJSON(t, http.MethodGet, srv.URL+"/chat-agent/sessions", nil, &list)
	assert.Equal(t, 1, list.Total)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/chat-agent/session/"+started.SessionID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodDelete, srv.URL+"/chat-agent/session/"+started.SessionID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, srv.URL+"/chat-agent/status/"+started.SessionID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConversationValidation(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	resp := doJSON(t, http.MethodPost, srv.URL+"/chat-agent/answer", map[string]any{"answer": "170"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	badQuestions := map[string]any{"questions": []map[string]any{
		{"id": 2, "question": "Height?", "validation": map[string]any{"type": "text"}},
	}}
	resp = doJSON(t, http.MethodPost, srv.URL+"/chat-agent/start", badQuestions, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var skip entity.ErrorResponse
	var started entity.ConversationDTO
	doJSON(t, http.MethodPost, srv.URL+"/chat-agent/start", nil, &started)
	resp = doJSON(t, http.MethodPost, srv.URL+"/chat-agent/skip", map[string]any{"session_id": started.SessionID}, &skip)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid session state", skip.Message)
}

func TestDiagnosis_Blocking(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 2, softWait: time.Second})

	var result entity.DiagnosisResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/diagnosis", diagnosisBody, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "straight", result.BodyType)

	resp = doJSON(t, http.MethodPost, srv.URL+"/chatbot/diagnosis", diagnosisBody, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var bad entity.ErrorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/diagnosis", map[string]any{"answers": []string{"x"}}, &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, bad.Detail, "gender")
}

func TestDiagnosis_Timeout(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1_000_000, softWait: 50 * time.Millisecond})

	var body entity.ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/diagnosis", diagnosisBody, &body)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.NotEmpty(t, body.Detail)
}

func TestDiagnosis_SoftPendingThenResult(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 2, softWait: time.Millisecond})

	var handle entity.SoftDiagnosisDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/diagnose/soft", diagnosisBody, &handle)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, entity.RunPending, handle.Status)
	require.NotEmpty(t, handle.ThreadID)
	require.NotEmpty(t, handle.RunID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/result/"+handle.ThreadID+"/"+handle.RunID+"?format=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result entity.DiagnosisResult
	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/result/"+handle.ThreadID+"/"+handle.RunID, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "straight", result.BodyType)

	var status entity.RunStatusDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/run-status?thread_id="+handle.ThreadID+"&run_id="+handle.RunID, nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, status.Ready)
	assert.Equal(t, entity.RunCompleted, status.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/result/"+handle.ThreadID+"/"+handle.RunID+"?format=markdown", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="diagnosis.md"`, resp.Header.Get("Content-Disposition"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Body Type Diagnosis"))
}

func TestDiagnosis_StillRunning(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1_000_000, softWait: 20 * time.Millisecond})

	var handle entity.SoftDiagnosisDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/chatbot/body-result", diagnosisBody, &handle)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var status entity.RunStatusDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/status/"+handle.ThreadID+"/"+handle.RunID, nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, status.Ready)
	assert.Equal(t, entity.RunPending, status.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/result/"+handle.ThreadID+"/"+handle.RunID, nil, nil)
	assert.Equal(t, http.StatusTooEarly, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/diagnose/status/thread_x/run_x", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContentAndChat(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	var content entity.ContentResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/create-content", map[string]any{
		"name": "Mina", "body_type": "straight", "height": 160, "weight": 50,
	}, &content)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, content.Content, "Styling guide")

	var chat entity.ChatResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{"question": "Frame?", "answer": "straight"}, &chat)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, chat.IsSuccess)
	assert.Equal(t, "straight", chat.Selected)

	resp = doJSON(t, http.MethodPost, srv.URL+"/create-content", map[string]any{"name": "Mina"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocsServed(t *testing.T) {
	srv := newTestServer(t, serverOptions{polls: 1, softWait: time.Second})

	resp, err := http.Get(srv.URL + "/docs/swagger.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")
}
