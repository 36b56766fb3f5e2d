package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/pkg/decoder"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const textKey = "text"

const defaultTimeoutMessage = "The assistant did not answer in time. Please try again."

type messages struct {
	timeout string
}

// DiagnosisUsecase turns survey data into assistant runs and decodes their results
type DiagnosisUsecase struct {
	gateway    Gateway
	decoder    ResponseDecoder
	sessions   SessionReader
	prompts    *PromptBuilder
	bodySchema *entity.ResponseSchema
	chatSchema *entity.ResponseSchema
	wait       WaitConfig
	messages   messages
}

// NewUsecase creates a new diagnosis use case
func NewUsecase(
	gateway Gateway,
	decoder ResponseDecoder,
	sessions SessionReader,
	catalog *config.Catalog,
	wait WaitConfig,
) (*DiagnosisUsecase, error) {
	prompts, err := NewPromptBuilder(catalog.Prompts)
	if err != nil {
		return nil, fmt.Errorf("build prompts: %w", err)
	}

	return &DiagnosisUsecase{
		gateway:    gateway,
		decoder:    decoder,
		sessions:   sessions,
		prompts:    prompts,
		bodySchema: catalog.JSONSchemas[config.SchemaBodyDiagnosis],
		chatSchema: catalog.JSONSchemas[config.SchemaChatResponse],
		wait:       wait,
		messages:   messages{timeout: catalog.Message("run_timeout", defaultTimeoutMessage)},
	}, nil
}

// Diagnose runs a body-type diagnosis and waits for its result
func (uc *DiagnosisUsecase) Diagnose(ctx context.Context, req *entity.DiagnosisRequest) (*entity.DiagnosisResult, error) {
	prompt, err := uc.prompts.Diagnosis(config.PromptBodyDiagnosis, req)
	if err != nil {
		return nil, err
	}

	handle, err := uc.submit(ctx, entity.AssistantBody, prompt, uc.bodySchema)
	if err != nil {
		return nil, err
	}

	state, err := uc.awaitHard(ctx, *handle)
	if err != nil {
		return nil, err
	}

	obj, err := uc.finish(ctx, *handle, state, uc.bodySchema)
	if err != nil {
		return nil, err
	}

	return toDiagnosisResult(obj), nil
}

// DiagnoseSoft waits only for the soft window. When the run is still going the
// returned value carries a handle for RunStatus and RunResult instead of a result.
func (uc *DiagnosisUsecase) DiagnoseSoft(ctx context.Context, req *entity.DiagnosisRequest) (*entity.SoftDiagnosis, error) {
	prompt, err := uc.prompts.Diagnosis(config.PromptBodyResult, req)
	if err != nil {
		return nil, err
	}

	handle, err := uc.submit(ctx, entity.AssistantBody, prompt, uc.bodySchema)
	if err != nil {
		return nil, err
	}

	state, err := uc.await(ctx, *handle, uc.wait.SoftWait)
	if err != nil {
		return nil, err
	}

	if !state.Status.IsTerminal() {
		ctxzap.Info(ctx, "diagnosis still running, returning handle",
			zap.String("thread_id", handle.ThreadID),
			zap.String("run_id", handle.RunID),
		)
		pending := *handle
		pending.Status = entity.RunPending
		return &entity.SoftDiagnosis{Pending: &pending}, nil
	}

	obj, err := uc.finish(ctx, *handle, state, uc.bodySchema)
	if err != nil {
		return nil, err
	}

	return &entity.SoftDiagnosis{Result: toDiagnosisResult(obj)}, nil
}

// RunStatus reports the current status of a previously submitted run
func (uc *DiagnosisUsecase) RunStatus(ctx context.Context, handle entity.RunHandle) (*entity.RunState, error) {
	state, err := uc.gateway.Poll(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("poll run: %w", err)
	}
	return state, nil
}

// RunResult returns the decoded result of a finished run.
// A run that is still going yields ErrRunNotCompleted.
func (uc *DiagnosisUsecase) RunResult(ctx context.Context, handle entity.RunHandle) (*entity.DiagnosisResult, error) {
	state, err := uc.RunStatus(ctx, handle)
	if err != nil {
		return nil, err
	}

	if !state.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", entity.ErrRunNotCompleted, handle.RunID)
	}

	obj, err := uc.finish(ctx, handle, state, uc.bodySchema)
	if err != nil {
		return nil, err
	}

	return toDiagnosisResult(obj), nil
}

// CreateContent asks the style assistant for free-form styling content
func (uc *DiagnosisUsecase) CreateContent(ctx context.Context, req *entity.ContentRequest) (string, error) {
	prompt, err := uc.prompts.Content(req)
	if err != nil {
		return "", err
	}

	handle, err := uc.submit(ctx, entity.AssistantStyle, prompt, nil)
	if err != nil {
		return "", err
	}

	state, err := uc.awaitHard(ctx, *handle)
	if err != nil {
		return "", err
	}

	obj, err := uc.finish(ctx, *handle, state, nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(obj[textKey].(string)), nil
}

// Chat validates a single free-text survey answer with the chat assistant
func (uc *DiagnosisUsecase) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	prompt, err := uc.prompts.Chat(req)
	if err != nil {
		return nil, err
	}

	handle, err := uc.submit(ctx, entity.AssistantChat, prompt, uc.chatSchema)
	if err != nil {
		return nil, err
	}

	state, err := uc.awaitHard(ctx, *handle)
	if err != nil {
		return nil, err
	}

	obj, err := uc.finish(ctx, *handle, state, uc.chatSchema)
	if err != nil {
		return nil, err
	}

	success, _ := obj["isSuccess"].(bool)
	return &entity.ChatResponse{
		IsSuccess:    success,
		Selected:     decoder.StringField(obj, "selected"),
		Message:      decoder.StringField(obj, "message"),
		NextQuestion: decoder.StringField(obj, "nextQuestion"),
	}, nil
}

// DiagnoseSession runs a soft diagnosis from the answers of a completed conversation.
// The session itself is left untouched.
func (uc *DiagnosisUsecase) DiagnoseSession(ctx context.Context, sessionID string) (*entity.SoftDiagnosis, error) {
	state, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !state.IsCompleted {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotComplete, sessionID)
	}

	req := RequestFromSession(state)
	ctxzap.Info(ctx, "diagnosing completed session",
		zap.String("session_id", sessionID),
		zap.Int("answer_count", len(state.Answers)),
	)

	return uc.DiagnoseSoft(ctx, req)
}

// RequestFromSession maps attribute-tagged answers onto the request fields and
// lists every other answer as "question: answer" in question order. Skipped
// questions contribute nothing.
func RequestFromSession(state *entity.ConversationState) *entity.DiagnosisRequest {
	req := &entity.DiagnosisRequest{Answers: []string{}}
	for _, q := range state.Questions {
		value, ok := state.Answers[q.ID]
		if !ok {
			continue
		}

		switch q.Attribute {
		case entity.AttributeHeight:
			req.Height = value.Number
		case entity.AttributeWeight:
			req.Weight = value.Number
		case entity.AttributeGender:
			req.Gender = value.String()
		default:
			req.Answers = append(req.Answers, fmt.Sprintf("%s: %s", q.Prompt, value.String()))
		}
	}
	return req
}

func (uc *DiagnosisUsecase) submit(
	ctx context.Context, kind entity.AssistantKind, prompt string, schema *entity.ResponseSchema,
) (*entity.RunHandle, error) {
	handle, err := uc.gateway.Submit(ctx, &entity.RunRequest{Assistant: kind, Prompt: prompt, Schema: schema})
	if err != nil {
		return nil, fmt.Errorf("submit %s run: %w", kind, err)
	}

	ctxzap.Info(ctx, "assistant run submitted",
		zap.String("assistant", string(kind)),
		zap.String("thread_id", handle.ThreadID),
		zap.String("run_id", handle.RunID),
	)

	return handle, nil
}

func toDiagnosisResult(obj map[string]any) *entity.DiagnosisResult {
	return &entity.DiagnosisResult{
		BodyType:          decoder.StringField(obj, "body_type"),
		TypeDescription:   decoder.StringField(obj, "type_description"),
		DetailedFeatures:  decoder.StringField(obj, "detailed_features"),
		AttractionPoints:  decoder.StringField(obj, "attraction_points"),
		RecommendedStyles: decoder.StringField(obj, "recommended_styles"),
		AvoidStyles:       decoder.StringField(obj, "avoid_styles"),
		StylingFixes:      decoder.StringField(obj, "styling_fixes"),
		StylingTips:       decoder.StringField(obj, "styling_tips"),
	}
}
