package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/style-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// File writes a downloadable document
func File(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Error logs err and writes an error body with the given status
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	body := entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Int("status", status), zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Int("status", status), zap.Error(err))
	}

	// gateway causes are returned for diagnostics
	if err != nil && (status == http.StatusBadGateway || status == http.StatusGatewayTimeout || status < http.StatusInternalServerError) {
		body.Detail = err.Error()
	}

	JSON(w, status, body)
}

// StatusFor maps a usecase error onto an HTTP status and a client-facing message
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrRunNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidQuestions):
		return http.StatusBadRequest, "invalid parameter"
	case errors.Is(err, entity.ErrSessionCompleted),
		errors.Is(err, entity.ErrSessionNotComplete),
		errors.Is(err, entity.ErrNoPendingQuestion),
		errors.Is(err, entity.ErrSkipNotAllowed):
		return http.StatusConflict, "invalid session state"
	case errors.Is(err, entity.ErrRunNotCompleted):
		return http.StatusTooEarly, "run is not completed yet"
	case errors.Is(err, entity.ErrGatewayTimeout):
		return http.StatusGatewayTimeout, "assistant timed out"
	case errors.Is(err, entity.ErrMalformedOutput):
		return http.StatusBadGateway, "assistant returned malformed output"
	case errors.Is(err, entity.ErrGatewayFailure):
		return http.StatusBadGateway, "assistant run failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// FromError writes the error response that matches err
func FromError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	Error(ctx, w, status, message, err)
}

// SoftDiagnosis writes 200 with the result, or 202 with the handle of a run still in progress
func SoftDiagnosis(w http.ResponseWriter, soft *entity.SoftDiagnosis) {
	if soft.Pending != nil {
		JSON(w, http.StatusAccepted, entity.SoftDiagnosisDTO{
			ThreadID: soft.Pending.ThreadID,
			RunID:    soft.Pending.RunID,
			Status:   soft.Pending.Status,
		})
		return
	}
	JSON(w, http.StatusOK, soft.Result)
}
