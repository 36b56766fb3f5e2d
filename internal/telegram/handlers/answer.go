package handlers

import (
	"context"
	"strings"

	"github.com/futig/style-backend/internal/telegram/render"
)

// AnswerHandler treats every plain text message as an answer to the pending question
type AnswerHandler struct {
	BaseHandler
	survey *Survey
}

func NewAnswerHandler(survey *Survey) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAnswering,
			messageSender: survey.sender,
		},
		survey: survey,
	}
}

func (h *AnswerHandler) Handle(ctx context.Context, msg *Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		h.sendMessage(msg.ChatID, render.MsgHelp, nil)
		return nil
	}
	return h.survey.Answer(ctx, msg, nil, msg.Text)
}
