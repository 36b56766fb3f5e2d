package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/style-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("poll run: %w", entity.ErrRunNotFound), http.StatusNotFound},
		{entity.ErrInvalidParameter, http.StatusBadRequest},
		{entity.ErrInvalidFormat, http.StatusBadRequest},
		{entity.ErrMissingField, http.StatusBadRequest},
		{entity.ErrInvalidQuestions, http.StatusBadRequest},
		{entity.ErrSessionCompleted, http.StatusConflict},
		{entity.ErrSessionNotComplete, http.StatusConflict},
		{entity.ErrNoPendingQuestion, http.StatusConflict},
		{entity.ErrSkipNotAllowed, http.StatusConflict},
		{fmt.Errorf("%w: asking -> starting", entity.ErrIllegalTransition), http.StatusInternalServerError},
		{entity.ErrRunNotCompleted, http.StatusTooEarly},
		{entity.ErrGatewayTimeout, http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&entity.MalformedOutputError{Raw: "x", Err: errors.New("bad")}, http.StatusBadGateway},
		{&entity.GatewayError{Status: entity.RunFailed}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, message := StatusFor(tt.err)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, message)
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestFromError_Detail(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(context.Background(), rec, fmt.Errorf("%w: gender", entity.ErrMissingField))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Bad Request", body.Error)
	assert.Contains(t, body.Detail, "gender")

	rec = httptest.NewRecorder()
	FromError(context.Background(), rec, errors.New("database exploded"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, decodeError(t, rec).Detail)

	rec = httptest.NewRecorder()
	FromError(context.Background(), rec, &entity.GatewayError{Status: entity.RunFailed, Code: "rate_limit_exceeded", Message: "quota exhausted"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeError(t, rec).Detail, "rate_limit_exceeded")
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "text/markdown", "diagnosis.md", []byte("# hi"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="diagnosis.md"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "# hi", rec.Body.String())
}

func TestSoftDiagnosis(t *testing.T) {
	rec := httptest.NewRecorder()
	SoftDiagnosis(rec, &entity.SoftDiagnosis{Pending: &entity.RunHandle{ThreadID: "t", RunID: "r", Status: entity.RunPending}})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	var pending entity.SoftDiagnosisDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Equal(t, "r", pending.RunID)

	rec = httptest.NewRecorder()
	SoftDiagnosis(rec, &entity.SoftDiagnosis{Result: &entity.DiagnosisResult{BodyType: "wave"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body_type":"wave"`)
}
