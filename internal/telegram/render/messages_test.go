package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/futig/style-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func surveyState() *entity.ConversationState {
	return &entity.ConversationState{
		Questions: []entity.Question{
			{ID: 1, Prompt: "What is your height?", HelpText: "For example 165.", Validation: entity.NumericRange(100, 250, "")},
			{ID: 2, Prompt: "What is your gender?", Validation: entity.ValidationRule{Type: entity.RuleChoice, Options: []string{"male", "female"}}},
		},
		CurrentQuestionIndex: 1,
		Status:               entity.StatusAsking,
	}
}

func TestQuestion_First(t *testing.T) {
	assert.Equal(t, "❓ (1/2) What is your height?\nFor example 165.", Question(surveyState()))
}

func TestQuestion_Retry(t *testing.T) {
	s := surveyState()
	s.Status = entity.StatusRetry
	s.RetryCount = 1
	s.ErrorMessage = "Height must be between 100 and 250 cm."
	s.HelpMessage = "Hint: enter a number between 100 and 250."

	want := "⚠️ Height must be between 100 and 250 cm.\n" +
		"💡 Hint: enter a number between 100 and 250.\n\n" +
		"❓ (1/2) What is your height?"
	assert.Equal(t, want, Question(s))
}

func TestQuestion_AcknowledgementAndNext(t *testing.T) {
	s := surveyState()
	s.CurrentQuestionIndex = 2
	s.ChatbotMessage = "Got it."

	assert.Equal(t, "Got it.\n\n❓ (2/2) What is your gender?", Question(s))
}

func TestQuestion_Completed(t *testing.T) {
	s := surveyState()
	s.CurrentQuestionIndex = 3
	s.IsCompleted = true
	s.ChatbotMessage = "All done."

	assert.Equal(t, "All done.", Question(s))
}

func TestStatus(t *testing.T) {
	s := surveyState()
	assert.Equal(t, "📊 Progress: 1/2, status: asking, attempts on this question: 0.", Status(s))

	s.IsCompleted = true
	s.CurrentQuestionIndex = 3
	assert.Equal(t, "✅ Survey completed (2/2).", Status(s))
}

func TestDiagnosis(t *testing.T) {
	out := Diagnosis(&entity.DiagnosisResult{BodyType: "wave", AvoidStyles: "Boxy jackets"})
	assert.Equal(t, "👗 Body type\nwave\n\n👎 Styles to avoid\nBoxy jackets", out)
}

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "net" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return false }

var _ net.Error = timeoutErr{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ErrGeneric},
		{fmt.Errorf("get: %w", entity.ErrSessionNotFound), ErrSessionNotFound},
		{entity.ErrSessionCompleted, ErrSessionCompleted},
		{entity.ErrSkipNotAllowed, MsgSkipNotAllowed},
		{entity.ErrGatewayTimeout, ErrTimeout},
		{context.DeadlineExceeded, ErrTimeout},
		{&entity.GatewayError{Status: entity.RunFailed}, ErrAssistantFailed},
		{&entity.MalformedOutputError{Err: errors.New("x")}, ErrAssistantFailed},
		{timeoutErr{timeout: true}, ErrTimeout},
		{timeoutErr{}, ErrNetworkIssue},
		{errors.New("dial tcp: connection refused"), ErrServiceUnavailable},
		{errors.New("boom"), ErrGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), fmt.Sprint(tt.err))
	}
}
