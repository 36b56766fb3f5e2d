package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/style-backend/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I will ask a few short questions and then describe your body type with styling advice.

Press the button below or send /start to begin.`

	MsgHelp = `🤖 Commands:

/start - Start a new survey
/skip - Skip a question you could not answer
/status - Show survey progress
/reset - Drop the current survey
/help - Show this help

Answer each question with a message or pick one of the buttons.`

	MsgNoSession       = "There is no active survey. Send /start to begin."
	MsgSessionReset    = "🗑 The survey was dropped. Send /start to begin again."
	MsgSurveyCompleted = "✅ All questions are answered. Preparing your diagnosis..."
	MsgStillRunning    = "⏳ Still working on your diagnosis, this can take a minute..."
	MsgAlreadyRunning  = "⏳ Your diagnosis is already being prepared."
	MsgNoResult        = "There is no diagnosis yet. Finish the survey first."
	MsgStaleButton     = "That question was already answered."
	MsgSkipNotAllowed  = "You can skip a question only after several unsuccessful attempts."
)

const (
	ErrGeneric            = "❌ Something went wrong. Please try again or send /start"
	ErrTimeout            = "⏱ The assistant did not answer in time. Please try again."
	ErrNetworkIssue       = "🌐 Network problem. Please try again in a moment."
	ErrServiceUnavailable = "🔧 The assistant is unavailable right now. Please try again later."
	ErrSessionNotFound    = "⌛ Your survey expired. Send /start to begin again."
	ErrSessionCompleted   = "✅ This survey is already completed. Send /start for a new one."
	ErrAssistantFailed    = "🤖 The assistant could not prepare a diagnosis. Please try again."
	ErrUnknownCommand     = "❌ Unknown command. Send /help"
)

// Question renders the pending question together with any feedback on the previous answer
func Question(state *entity.ConversationState) string {
	var sb strings.Builder

	if state.ChatbotMessage != "" {
		sb.WriteString(state.ChatbotMessage)
		sb.WriteString("\n\n")
	}
	if state.ErrorMessage != "" {
		fmt.Fprintf(&sb, "⚠️ %s\n", state.ErrorMessage)
	}
	if state.HelpMessage != "" {
		fmt.Fprintf(&sb, "💡 %s\n", state.HelpMessage)
	}
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n\n") {
		sb.WriteString("\n")
	}

	q, ok := state.PendingQuestion()
	if !ok {
		return strings.TrimSpace(sb.String())
	}

	fmt.Fprintf(&sb, "❓ (%s) %s", state.Progress(), q.Prompt)
	if q.HelpText != "" && state.RetryCount == 0 {
		fmt.Fprintf(&sb, "\n%s", q.HelpText)
	}

	return sb.String()
}

// Status summarizes survey progress
func Status(state *entity.ConversationState) string {
	if state.IsCompleted {
		return fmt.Sprintf("✅ Survey completed (%s).", state.Progress())
	}
	return fmt.Sprintf("📊 Progress: %s, status: %s, attempts on this question: %d.",
		state.Progress(), state.Status, state.RetryCount)
}

// Diagnosis renders a diagnosis result as plain text
func Diagnosis(res *entity.DiagnosisResult) string {
	sections := []struct {
		title string
		body  string
	}{
		{"👗 Body type", res.BodyType},
		{"📝 Description", res.TypeDescription},
		{"🔍 Features", res.DetailedFeatures},
		{"✨ Attraction points", res.AttractionPoints},
		{"👍 Recommended styles", res.RecommendedStyles},
		{"👎 Styles to avoid", res.AvoidStyles},
		{"🪡 Styling fixes", res.StylingFixes},
		{"💡 Tips", res.StylingTips},
	}

	var parts []string
	for _, s := range sections {
		if s.body == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s\n%s", s.title, s.body))
	}
	return strings.Join(parts, "\n\n")
}

// ClassifyError maps an error to a user-friendly message
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrSessionCompleted):
		return ErrSessionCompleted
	case errors.Is(err, entity.ErrSkipNotAllowed):
		return MsgSkipNotAllowed
	case errors.Is(err, entity.ErrGatewayTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, entity.ErrGatewayFailure), errors.Is(err, entity.ErrMalformedOutput):
		return ErrAssistantFailed
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	if strings.Contains(err.Error(), "connection refused") {
		return ErrServiceUnavailable
	}

	return ErrGeneric
}
