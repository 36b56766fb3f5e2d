package handlers

import (
	"context"
	"fmt"

	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/telegram/keyboard"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles button presses and the bot commands routed through them
type CallbackHandler struct {
	BaseHandler
	survey *Survey
}

func NewCallbackHandler(survey *Survey) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: survey.sender,
		},
		survey: survey,
	}
}

func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	ctxzap.Debug(ctx, "handling callback",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
	)

	switch data.Action {
	case keyboard.ActionCommand:
		return h.handleCommand(ctx, msg, data.Value)
	case keyboard.ActionAnswer:
		questionID, option, err := keyboard.ParseAnswer(data.Value)
		if err != nil {
			return err
		}
		return h.survey.Answer(ctx, msg, &questionID, option)
	case keyboard.ActionDownload:
		format := entity.ResultFormat(data.Value)
		if !format.IsValid() || format == entity.FormatJSON {
			return fmt.Errorf("%w: %s", entity.ErrInvalidFormat, data.Value)
		}
		return h.survey.Download(ctx, msg, format)
	default:
		return fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

func (h *CallbackHandler) handleCommand(ctx context.Context, msg *Message, command string) error {
	switch command {
	case keyboard.CommandStart:
		return h.survey.Start(ctx, msg)
	case keyboard.CommandSkip:
		return h.survey.Skip(ctx, msg)
	case keyboard.CommandStatus:
		return h.survey.Status(ctx, msg)
	case keyboard.CommandDiagnose:
		return h.survey.Diagnose(ctx, msg)
	case keyboard.CommandReset:
		return h.survey.Reset(ctx, msg)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
