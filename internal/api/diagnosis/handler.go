package diagnosis

import (
	"encoding/json"
	"net/http"

	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/pkg/formatter"
	"github.com/futig/style-backend/internal/pkg/logger"
	"github.com/futig/style-backend/internal/pkg/response"
	"github.com/futig/style-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	reportFileName = "diagnosis"
	chatbotService = "your-mode-chatbot"
)

type Handler struct {
	usecase   DiagnosisUsecase
	factory   *formatter.Factory
	validator *validator.Validator
}

func NewHandler(
	usecase DiagnosisUsecase,
	factory *formatter.Factory,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		factory:   factory,
		validator: validator,
	}
}

// Status handles GET /chatbot/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"service": chatbotService,
	})
}

// Diagnose handles POST /diagnosis - blocks until the diagnosis is ready or times out
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Diagnose")

	var req entity.DiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateDiagnosis(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "diagnosis requested",
		zap.Int("answer_count", len(req.Answers)),
		zap.String("gender", req.Gender),
	)

	result, err := h.usecase.Diagnose(ctx, &req)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// DiagnoseSoft handles POST /diagnose/soft - 200 with the result or 202 with a run handle
func (h *Handler) DiagnoseSoft(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DiagnoseSoft")

	var req entity.DiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateDiagnosis(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	soft, err := h.usecase.DiagnoseSoft(ctx, &req)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.SoftDiagnosis(w, soft)
}

// RunStatus handles GET /diagnose/status/{thread_id}/{run_id}
func (h *Handler) RunStatus(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RunStatus")

	handle, ok := h.runHandle(w, r)
	if !ok {
		return
	}
	ctx = logger.WithRun(ctx, handle)

	state, err := h.usecase.RunStatus(ctx, handle)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, entity.RunStatusDTO{
		ThreadID:  handle.ThreadID,
		RunID:     handle.RunID,
		Status:    state.Status,
		Ready:     state.Status == entity.RunCompleted,
		LastError: state.LastError,
	})
}

// RunResult handles GET /diagnose/result/{thread_id}/{run_id}?format=json|markdown|pdf|docx.
// Answers 425 while the run is still going.
func (h *Handler) RunResult(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RunResult")

	handle, ok := h.runHandle(w, r)
	if !ok {
		return
	}
	ctx = logger.WithRun(ctx, handle)

	format := entity.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		format = entity.ResultFormat(f)
	}
	if !format.IsValid() {
		response.Error(ctx, w, http.StatusBadRequest, "unsupported format", entity.ErrInvalidFormat)
		return
	}

	result, err := h.usecase.RunResult(ctx, handle)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	if format == entity.FormatJSON {
		response.JSON(w, http.StatusOK, result)
		return
	}

	f, err := h.factory.Create(format)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	data, err := f.Format(formatter.DiagnosisReport(result))
	if err != nil {
		response.Error(ctx, w, http.StatusInternalServerError, "failed to render report", err)
		return
	}

	response.File(w, f.ContentType(), reportFileName+f.FileExtension(), data)
}

// CreateContent handles POST /create-content
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateContent")

	var req entity.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateContent(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	content, err := h.usecase.CreateContent(ctx, &req)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, entity.ContentResponse{Content: content})
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateChat(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	resp, err := h.usecase.Chat(ctx, &req)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// runHandle reads the run identifiers from the path, or from the query on the legacy routes.
func (h *Handler) runHandle(w http.ResponseWriter, r *http.Request) (entity.RunHandle, bool) {
	threadID := chi.URLParam(r, "thread_id")
	runID := chi.URLParam(r, "run_id")
	if threadID == "" && runID == "" {
		threadID = r.URL.Query().Get("thread_id")
		runID = r.URL.Query().Get("run_id")
	}

	if err := h.validator.ValidateRunHandle(threadID, runID); err != nil {
		response.Error(r.Context(), w, http.StatusBadRequest, "validation failed", err)
		return entity.RunHandle{}, false
	}

	return entity.RunHandle{ThreadID: threadID, RunID: runID}, true
}
