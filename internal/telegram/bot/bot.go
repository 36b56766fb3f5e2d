package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/telegram/handlers"
	"github.com/futig/style-backend/internal/telegram/keyboard"
	"github.com/futig/style-backend/internal/telegram/middleware"
	"github.com/futig/style-backend/internal/telegram/render"
	"github.com/futig/style-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const commandHelp = "help"

// commands that are served by the callback handler as "action:<command>"
var routedCommands = map[string]bool{
	keyboard.CommandSkip:     true,
	keyboard.CommandStatus:   true,
	keyboard.CommandDiagnose: true,
	keyboard.CommandReset:    true,
}

// Bot long-polls Telegram and routes updates to the registered handlers
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	keyboard     *keyboard.Builder
	logger       *zap.Logger

	// handle runs an update through the middleware chain
	handle func(tgbotapi.Update)

	stopOnce sync.Once
	stopped  chan struct{}
	inflight sync.WaitGroup
}

// New authorizes against the Bot API and prepares the middleware chain
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := newAPI(cfg)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		keyboard:     keyboard.NewBuilder(),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		stopped:      make(chan struct{}),
	}

	b.handle = middleware.Chain(b.route,
		middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		middleware.NewLoggingMiddleware(logger),
		middleware.NewRecoveryMiddleware(logger, api),
	)

	return b, nil
}

func newAPI(cfg *config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	if cfg.APIEndpoint != "" {
		return tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, cfg.APIEndpoint)
	}
	return tgbotapi.NewBotAPI(cfg.BotToken)
}

// Start begins long polling; it returns once the poller is running
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	go b.poll(ctxzap.ToContext(ctx, b.logger), updates)

	b.logger.Info("telegram bot started")
	return nil
}

// Stop ends polling and waits for in-flight updates until ctx is done
func (b *Bot) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() {
		close(b.stopped)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("telegram bot stopped, all updates processed")
		return nil
	case <-ctx.Done():
		b.logger.Warn("telegram bot stopped with updates still in flight")
		return fmt.Errorf("wait for in-flight updates: %w", ctx.Err())
	}
}

func (b *Bot) poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "update polling cancelled")
			return
		case <-b.stopped:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				b.handle(update)
			}()
		}
	}
}

func (b *Bot) route(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	switch {
	case update.CallbackQuery != nil:
		b.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.onMessage(ctx, update.Message)
	}
}

func (b *Bot) onMessage(ctx context.Context, message *tgbotapi.Message) {
	ctx = withChat(ctx, message.From.ID, message.Chat.ID)

	if message.IsCommand() {
		b.onCommand(ctx, message)
		return
	}

	b.dispatch(ctx, handlers.HandlerStateAnswering, &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	})
}

func (b *Bot) onCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	ctxzap.Info(ctx, "command received", zap.String("command", command))

	switch {
	case command == keyboard.CommandStart:
		b.reply(ctx, message.Chat.ID, render.MsgWelcome, b.keyboard.StartKeyboard())
	case command == commandHelp:
		b.reply(ctx, message.Chat.ID, render.MsgHelp, nil)
	case routedCommands[command]:
		b.dispatch(ctx, handlers.HandlerStateCallback, &handlers.Message{
			ChatID:       message.Chat.ID,
			UserID:       message.From.ID,
			MessageID:    message.MessageID,
			CallbackData: keyboard.EncodeCallback(keyboard.ActionCommand, command),
		})
	default:
		b.reply(ctx, message.Chat.ID, render.ErrUnknownCommand, nil)
	}
}

// onCallback acknowledges the press at once and processes it in the background;
// a diagnosis can outlive Telegram's callback deadline.
func (b *Bot) onCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.ack(ctx, query.ID, "")
		return
	}

	data, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err), zap.String("data", query.Data))
		b.ack(ctx, query.ID, "❌ Unknown button")
		return
	}

	ctx = withChat(ctx, query.From.ID, query.Message.Chat.ID)
	ctxzap.Info(ctx, "button pressed",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
	)

	b.ack(ctx, query.ID, "")

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.dispatch(ctx, handlers.HandlerStateCallback, msg)
	}()
}

// dispatch runs the handler registered for handlerState and reports failures to the chat
func (b *Bot) dispatch(ctx context.Context, handlerState string, msg *handlers.Message) {
	handler, ok := b.handlers[handlerState]
	if !ok {
		ctxzap.Error(ctx, "no handler registered", zap.String("state", handlerState))
		b.reply(ctx, msg.ChatID, render.ErrGeneric, nil)
		return
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler failed", zap.Error(err), zap.String("state", handlerState))
		b.reply(ctx, msg.ChatID, render.ClassifyError(err), nil)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send message", zap.Error(err))
	}
}

func (b *Bot) ack(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback", zap.Error(err), zap.String("callback_id", callbackID))
	}
}

func withChat(ctx context.Context, userID, chatID int64) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	))
}

var errInvalidState = errors.New("invalid handler state")

// RegisterHandler routes handler.GetState() to handler
func (b *Bot) RegisterHandler(handler handlers.Handler) error {
	st := handler.GetState()
	if !handlers.IsValidState(st) {
		return fmt.Errorf("%w: %q", errInvalidState, st)
	}

	b.handlers[st] = handler
	b.logger.Debug("handler registered", zap.String("state", st))
	return nil
}

func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

func (b *Bot) StateManager() *state.Manager {
	return b.stateManager
}

func (b *Bot) Keyboard() *keyboard.Builder {
	return b.keyboard
}
