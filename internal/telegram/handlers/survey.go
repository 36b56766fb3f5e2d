package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/pkg/formatter"
	"github.com/futig/style-backend/internal/telegram/keyboard"
	"github.com/futig/style-backend/internal/telegram/render"
	"github.com/futig/style-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const reportFileName = "diagnosis"

// Survey drives one chat through the conversation and the diagnosis that follows it
type Survey struct {
	bot          *tgbotapi.BotAPI
	sender       *MessageSender
	states       *state.Manager
	conversation ConversationUsecase
	diagnosis    DiagnosisUsecase
	keyboard     *keyboard.Builder
	formatters   *formatter.Factory
	pollInterval time.Duration
	resultWait   time.Duration
	logger       *zap.Logger
}

func NewSurvey(
	bot *tgbotapi.BotAPI,
	states *state.Manager,
	conversation ConversationUsecase,
	diagnosis DiagnosisUsecase,
	kb *keyboard.Builder,
	cfg *config.TelegramConfig,
	logger *zap.Logger,
) *Survey {
	return &Survey{
		bot:          bot,
		sender:       NewMessageSender(bot, logger),
		states:       states,
		conversation: conversation,
		diagnosis:    diagnosis,
		keyboard:     kb,
		formatters:   formatter.NewFactory(),
		pollInterval: cfg.ResultPollInterval,
		resultWait:   cfg.ResultWait,
		logger:       logger,
	}
}

// Start opens a new conversation and binds it to the user, replacing any previous one
func (s *Survey) Start(ctx context.Context, msg *Message) error {
	if previous, err := s.states.ActiveSessionID(ctx, msg.UserID); err == nil && previous != "" {
		if _, err := s.conversation.DeleteSession(ctx, previous); err != nil {
			ctxzap.Warn(ctx, "failed to drop previous session", zap.Error(err), zap.String("session_id", previous))
		}
	}

	st, err := s.conversation.Start(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}

	if err := s.states.Bind(ctx, msg.UserID, msg.ChatID, st.SessionID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "survey started",
		zap.String("session_id", st.SessionID),
		zap.Int64("user_id", msg.UserID),
	)

	return s.present(ctx, msg, st)
}

// Answer submits text for the pending question. questionID is set when the answer came from a button.
func (s *Survey) Answer(ctx context.Context, msg *Message, questionID *int, text string) error {
	sessionID, ok := s.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	st, accepted, err := s.conversation.SubmitAnswer(ctx, sessionID, questionID, text)
	if err != nil {
		ctxzap.Warn(ctx, "answer rejected", zap.Error(err), zap.String("session_id", sessionID))
		s.sender.Send(msg.ChatID, render.ClassifyError(err), nil)
		return nil
	}
	if !accepted {
		s.sender.Send(msg.ChatID, render.MsgStaleButton, nil)
		return nil
	}

	return s.present(ctx, msg, st)
}

func (s *Survey) Skip(ctx context.Context, msg *Message) error {
	sessionID, ok := s.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	st, err := s.conversation.Skip(ctx, sessionID)
	if err != nil {
		s.sender.Send(msg.ChatID, render.ClassifyError(err), nil)
		return nil
	}

	return s.present(ctx, msg, st)
}

func (s *Survey) Status(ctx context.Context, msg *Message) error {
	sessionID, ok := s.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	st, err := s.conversation.GetState(ctx, sessionID)
	if err != nil {
		s.sender.Send(msg.ChatID, render.ClassifyError(err), nil)
		return nil
	}

	s.sender.Send(msg.ChatID, render.Status(st), nil)
	return nil
}

// Reset drops the conversation and the chat binding
func (s *Survey) Reset(ctx context.Context, msg *Message) error {
	sessionID, err := s.states.ActiveSessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if sessionID != "" {
		if _, err := s.conversation.DeleteSession(ctx, sessionID); err != nil {
			ctxzap.Error(ctx, "failed to delete session", zap.Error(err), zap.String("session_id", sessionID))
		}
	}
	if err := s.states.DeleteSession(ctx, msg.UserID); err != nil {
		return err
	}

	s.sender.Send(msg.ChatID, render.MsgSessionReset, nil)
	return nil
}

// Diagnose runs the diagnosis for the user's completed survey and sends the result
func (s *Survey) Diagnose(ctx context.Context, msg *Message) error {
	sessionID, ok := s.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	started, err := s.states.BeginDiagnosis(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if !started {
		s.sender.Send(msg.ChatID, render.MsgAlreadyRunning, nil)
		return nil
	}

	var result *entity.DiagnosisResult
	defer func() {
		if err := s.states.FinishDiagnosis(ctx, msg.UserID, result); err != nil {
			ctxzap.Error(ctx, "failed to store diagnosis state", zap.Error(err))
		}
	}()

	typing := NewTypingNotifier(s.bot, msg.ChatID, s.logger)
	typing.Start(ctx)
	defer typing.Stop()

	soft, err := s.diagnosis.DiagnoseSession(ctx, sessionID)
	if err == nil && soft.Pending != nil {
		s.sender.Send(msg.ChatID, render.MsgStillRunning, nil)
		result, err = s.awaitResult(ctx, *soft.Pending)
	} else if err == nil {
		result = soft.Result
	}

	if err != nil {
		ctxzap.Error(ctx, "diagnosis failed", zap.Error(err), zap.String("session_id", sessionID))
		s.sender.Send(msg.ChatID, render.ClassifyError(err), s.keyboard.RetryDiagnosisKeyboard())
		return nil
	}

	ctxzap.Info(ctx, "diagnosis delivered",
		zap.String("session_id", sessionID),
		zap.String("body_type", result.BodyType),
	)
	s.sender.Send(msg.ChatID, render.Diagnosis(result), s.keyboard.ReportKeyboard())
	return nil
}

// Download sends the last diagnosis as a document
func (s *Survey) Download(ctx context.Context, msg *Message, format entity.ResultFormat) error {
	session, err := s.states.GetSession(ctx, msg.UserID)
	if err != nil || session.LastResult == nil {
		s.sender.Send(msg.ChatID, render.MsgNoResult, nil)
		return nil
	}

	f, err := s.formatters.Create(format)
	if err != nil {
		return err
	}

	data, err := f.Format(formatter.DiagnosisReport(session.LastResult))
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}

	return s.sender.SendDocument(msg.ChatID, reportFileName+f.FileExtension(), data)
}

// present shows the next question, or starts the diagnosis once the survey is complete
func (s *Survey) present(ctx context.Context, msg *Message, st *entity.ConversationState) error {
	if st.IsCompleted {
		s.sender.Send(msg.ChatID, render.MsgSurveyCompleted, nil)
		return s.Diagnose(ctx, msg)
	}

	var markup *tgbotapi.InlineKeyboardMarkup
	if q, ok := st.PendingQuestion(); ok {
		markup = s.keyboard.QuestionKeyboard(q, st.Status == entity.StatusMaxRetriesExceeded)
	}

	s.sender.Send(msg.ChatID, render.Question(st), markup)
	return nil
}

// awaitResult polls a run that outlived the soft wait
func (s *Survey) awaitResult(ctx context.Context, handle entity.RunHandle) (*entity.DiagnosisResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.resultWait)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: waited %s", entity.ErrGatewayTimeout, s.resultWait)
		case <-ticker.C:
		}

		result, err := s.diagnosis.RunResult(waitCtx, handle)
		if errors.Is(err, entity.ErrRunNotCompleted) {
			continue
		}
		return result, err
	}
}

func (s *Survey) activeSession(ctx context.Context, msg *Message) (string, bool) {
	sessionID, err := s.states.ActiveSessionID(ctx, msg.UserID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load chat session", zap.Error(err))
		s.sender.Send(msg.ChatID, render.ErrGeneric, nil)
		return "", false
	}
	if sessionID == "" {
		s.sender.Send(msg.ChatID, render.MsgNoSession, s.keyboard.StartKeyboard())
		return "", false
	}
	return sessionID, true
}
