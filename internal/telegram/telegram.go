package telegram

import (
	"context"
	"fmt"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/telegram/bot"
	"github.com/futig/style-backend/internal/telegram/handlers"
	"github.com/futig/style-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	conversationUC handlers.ConversationUsecase,
	diagnosisUC handlers.DiagnosisUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	survey := handlers.NewSurvey(b.API(), stateManager, conversationUC, diagnosisUC, b.Keyboard(), cfg, logger)
	for _, h := range []handlers.Handler{handlers.NewCallbackHandler(survey), handlers.NewAnswerHandler(survey)} {
		if err := b.RegisterHandler(h); err != nil {
			return nil, err
		}
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
