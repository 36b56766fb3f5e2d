package conversation

import (
	"github.com/futig/style-backend/internal/entity"
)

const (
	actionAnswer   = "answer"
	actionRetry    = "retry"
	actionClarify  = "clarify"
	actionContinue = "continue"
	actionNone     = "none"
)

func requiredAction(state *entity.ConversationState) string {
	switch state.Status {
	case entity.StatusCompleted:
		return actionNone
	case entity.StatusRetry, entity.StatusInvalid:
		return actionRetry
	case entity.StatusMaxRetriesExceeded:
		return actionClarify
	case entity.StatusContinue, entity.StatusValid:
		return actionContinue
	default:
		return actionAnswer
	}
}

func toQuestionDTO(q *entity.Question, state *entity.ConversationState) *entity.QuestionDTO {
	return &entity.QuestionDTO{
		ID:          q.ID,
		Question:    q.Prompt,
		Type:        q.Validation.Type,
		Options:     q.Validation.Options,
		HelpText:    q.HelpText,
		HelpMessage: state.HelpMessage,
		RetryCount:  state.RetryCount,
	}
}

func toConversationDTO(state *entity.ConversationState) *entity.ConversationDTO {
	dto := &entity.ConversationDTO{
		SessionID:       state.SessionID,
		Status:          state.Status,
		ChatbotMessage:  state.ChatbotMessage,
		ErrorMessage:    state.ErrorMessage,
		AdditionalGuide: state.HelpMessage,
		GuideType:       state.GuideType,
		RequiresAction:  requiredAction(state),
		Progress:        state.Progress(),
		RetryCount:      state.RetryCount,
		IsCompleted:     state.IsCompleted,
		Answers:         state.Answers,
	}

	if q, ok := state.PendingQuestion(); ok {
		dto.CurrentQuestion = toQuestionDTO(q, state)
	}
	if dto.Answers == nil {
		dto.Answers = map[int]entity.AnswerValue{}
	}

	return dto
}

func toHistoryDTO(state *entity.ConversationState) *entity.HistoryDTO {
	events := state.History
	if events == nil {
		events = []entity.Event{}
	}
	return &entity.HistoryDTO{SessionID: state.SessionID, Events: events}
}
