package conversation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/pkg/logger"
	"github.com/futig/style-backend/internal/pkg/response"
	"github.com/futig/style-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ConversationUsecase
	diagnosis DiagnosisUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase ConversationUsecase,
	diagnosis DiagnosisUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		diagnosis: diagnosis,
		validator: validator,
	}
}

// Start handles POST /start - open a session and ask the first question
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartConversation")

	var req entity.StartConversationRequest
	// an empty body starts a session with the default questions
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateStartConversation(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	state, err := h.usecase.Start(ctx, req.QuestionList(), req.UserPreferences)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, toConversationDTO(state))
}

// SubmitAnswer handles POST /answer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SubmitAnswer")

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx = logger.WithSession(ctx, req.SessionID)

	state, accepted, err := h.usecase.SubmitAnswer(ctx, req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	dto := toConversationDTO(state)
	dto.Accepted = &accepted

	response.JSON(w, http.StatusOK, dto)
}

// Skip handles POST /skip
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SkipQuestion")

	var req entity.SkipQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSkipQuestion(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx = logger.WithSession(ctx, req.SessionID)

	state, err := h.usecase.Skip(ctx, req.SessionID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, toConversationDTO(state))
}

// GetStatus handles GET /status/{id}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithAction(logger.WithSession(r.Context(), sessionID), "GetStatus")

	state, err := h.usecase.GetState(ctx, sessionID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, toConversationDTO(state))
}

// GetHistory handles GET /history/{id}
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithAction(logger.WithSession(r.Context(), sessionID), "GetHistory")

	state, err := h.usecase.GetState(ctx, sessionID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, toHistoryDTO(state))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSessions")

	sessions, err := h.usecase.ListSessions(ctx)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, entity.SessionListDTO{Sessions: sessions, Total: len(sessions)})
}

// DeleteSession handles DELETE /session/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithAction(logger.WithSession(r.Context(), sessionID), "DeleteSession")

	existed, err := h.usecase.DeleteSession(ctx, sessionID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}
	if !existed {
		response.FromError(ctx, w, entity.ErrSessionNotFound)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "session deleted",
	})
}

// DiagnoseSession handles POST /session/{id}/diagnose. Answers 202 with a run
// handle when the assistant has not finished within the soft wait.
func (h *Handler) DiagnoseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithAction(logger.WithSession(r.Context(), sessionID), "DiagnoseSession")

	soft, err := h.diagnosis.DiagnoseSession(ctx, sessionID)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session diagnosis requested", zap.Bool("pending", soft.Pending != nil))

	response.SoftDiagnosis(w, soft)
}
