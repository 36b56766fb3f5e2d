package assistant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const messagesPageSize = 20

// Connector talks to the Assistants API: one thread per run, polled until done.
type Connector struct {
	client *openai.Client
	cfg    config.AssistantConfig
	tracer trace.Tracer
	logger *zap.Logger
}

func NewConnector(cfg config.AssistantConfig, logger *zap.Logger) *Connector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = common.NewHTTPClient(cfg.HTTPClientConfig)

	return &Connector{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		tracer: otel.Tracer("style-backend/assistant"),
		logger: logger,
	}
}

// Submit creates a thread holding the prompt and starts a run on it
func (c *Connector) Submit(ctx context.Context, req *entity.RunRequest) (*entity.RunHandle, error) {
	ctx, span := c.tracer.Start(ctx, "assistant.submit",
		trace.WithAttributes(attribute.String("assistant.kind", string(req.Assistant))))
	defer span.End()

	assistantID := c.cfg.AssistantID(req.Assistant)
	if assistantID == "" {
		return nil, fmt.Errorf("%w: no assistant configured for %q", entity.ErrInvalidParameter, req.Assistant)
	}

	runReq := openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{AssistantID: assistantID},
		Thread: openai.ThreadRequest{
			Messages: []openai.ThreadMessage{
				{Role: openai.ThreadMessageRoleUser, Content: req.Prompt},
			},
		},
	}
	if req.Schema != nil {
		runReq.ResponseFormat = map[string]any{
			"type":        "json_schema",
			"json_schema": req.Schema,
		}
	}

	run, err := retry.DoWithData(func() (openai.Run, error) {
		return c.client.CreateThreadAndRun(ctx, runReq)
	}, c.cfg.Retry.Options(ctx, isTransient)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return nil, fmt.Errorf("%w: create thread and run: %w", entity.ErrGatewayFailure, err)
	}

	span.SetAttributes(attribute.String("assistant.thread_id", run.ThreadID), attribute.String("assistant.run_id", run.ID))
	ctxzap.Info(ctx, "assistant run submitted",
		zap.String("assistant", string(req.Assistant)),
		zap.String("thread_id", run.ThreadID),
		zap.String("run_id", run.ID),
	)

	return &entity.RunHandle{
		ThreadID: run.ThreadID,
		RunID:    run.ID,
		Status:   toRunStatus(run.Status),
	}, nil
}

// Poll returns the current status of a run
func (c *Connector) Poll(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error) {
	ctx, span := c.tracer.Start(ctx, "assistant.poll",
		trace.WithAttributes(attribute.String("assistant.run_id", handle.RunID)))
	defer span.End()

	run, err := retry.DoWithData(func() (openai.Run, error) {
		return c.client.RetrieveRun(ctx, handle.ThreadID, handle.RunID)
	}, c.cfg.Retry.Options(ctx, isTransient)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll failed")
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", entity.ErrRunNotFound, handle.ThreadID, handle.RunID)
		}
		return nil, fmt.Errorf("%w: retrieve run: %w", entity.ErrGatewayFailure, err)
	}

	state := &entity.RunState{Status: toRunStatus(run.Status)}
	if run.LastError != nil {
		state.LastError = &entity.RunError{
			Code:    string(run.LastError.Code),
			Message: run.LastError.Message,
		}
	}
	span.SetAttributes(attribute.String("assistant.status", string(state.Status)))

	return state, nil
}

// FetchResult returns the text of the newest assistant message of the run
func (c *Connector) FetchResult(ctx context.Context, handle entity.RunHandle) (string, error) {
	ctx, span := c.tracer.Start(ctx, "assistant.fetch_result",
		trace.WithAttributes(attribute.String("assistant.run_id", handle.RunID)))
	defer span.End()

	limit := messagesPageSize
	order := "desc"
	runID := handle.RunID

	list, err := retry.DoWithData(func() (openai.MessagesList, error) {
		return c.client.ListMessage(ctx, handle.ThreadID, &limit, &order, nil, nil, &runID)
	}, c.cfg.Retry.Options(ctx, isTransient)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list messages failed")
		return "", fmt.Errorf("%w: list messages: %w", entity.ErrGatewayFailure, err)
	}

	text, ok := newestAssistantText(list.Messages)
	if !ok {
		err := &entity.MalformedOutputError{Err: errors.New("no assistant text message")}
		span.RecordError(err)
		return "", err
	}

	return text, nil
}

// newestAssistantText picks the first text part of the most recent assistant message.
func newestAssistantText(messages []openai.Message) (string, bool) {
	var newest *openai.Message
	for i := range messages {
		m := &messages[i]
		if m.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		if newest == nil || m.CreatedAt > newest.CreatedAt {
			newest = m
		}
	}
	if newest == nil {
		return "", false
	}

	for _, content := range newest.Content {
		if content.Type == "text" && content.Text != nil {
			return strings.TrimSpace(content.Text.Value), true
		}
	}

	return "", false
}

func toRunStatus(status openai.RunStatus) entity.RunStatus {
	switch string(status) {
	case "completed":
		return entity.RunCompleted
	case "failed", "incomplete":
		return entity.RunFailed
	case "cancelled":
		return entity.RunCancelled
	case "expired":
		return entity.RunExpired
	default:
		// queued, in_progress, requires_action, cancelling
		return entity.RunPending
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isNotFound(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound
}
