package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/style-backend/internal/api"
	conversationapi "github.com/futig/style-backend/internal/api/conversation"
	diagnosisapi "github.com/futig/style-backend/internal/api/diagnosis"
	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/integration/assistant"
	"github.com/futig/style-backend/internal/pkg/decoder"
	"github.com/futig/style-backend/internal/pkg/formatter"
	"github.com/futig/style-backend/internal/pkg/validator"
	"github.com/futig/style-backend/internal/telegram"
	"github.com/futig/style-backend/internal/telegram/state"
	"github.com/futig/style-backend/internal/usecase/conversation"
	"github.com/futig/style-backend/internal/usecase/diagnosis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	chatStateCleanup = 10 * time.Minute
	// headroom on top of the request timeout so the timeout middleware answers first
	writeTimeoutSlack = 5 * time.Second
)

// core holds the use cases shared by the HTTP server and the Telegram bot
type core struct {
	conversation *conversation.ConversationUsecase
	diagnosis    *diagnosis.DiagnosisUsecase
	redis        *redis.Client
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	requestValidator := validator.NewValidator()
	diagnosisHandler := diagnosisapi.NewHandler(c.diagnosis, formatter.NewFactory(), requestValidator)
	conversationHandler := conversationapi.NewHandler(c.conversation, c.diagnosis, requestValidator)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(cfg, diagnosisHandler, conversationHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + writeTimeoutSlack,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		redis:  c.redis,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *config.Config, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	var chatStorage state.Storage = state.NewMemoryStorage(cfg.TelegramCfg.ChatTTL, chatStateCleanup)
	if c.redis != nil {
		chatStorage = state.NewRedisStorage(c.redis, cfg.TelegramCfg.RedisKeyPrefix, cfg.TelegramCfg.ChatTTL)
		logger.Info("Telegram chat state stored in redis")
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, chatStorage, c.conversation, c.diagnosis, logger)
	if err != nil {
		if c.redis != nil {
			_ = c.redis.Close()
		}
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, cfg, logger, nil
}

func buildCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core, error) {
	repo, redisClient, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup session store: %w", err)
	}

	catalog := cfg.Catalog
	rules := conversation.NewRuleEngine(
		conversation.WithChoiceMatching(conversation.ChoiceMatching{
			TrimSpace:  cfg.ConversationCfg.ChoiceTrimSpace,
			IgnoreCase: cfg.ConversationCfg.ChoiceIgnoreCase,
		}),
		conversation.WithMessages(
			catalog.Message("not_a_number", ""),
			catalog.Message("not_an_option", ""),
			catalog.Message("empty_answer", ""),
		),
	)

	machine := conversation.NewMachine(rules, conversation.MachineConfig{
		MaxRetries: cfg.ConversationCfg.MaxRetries,
		AutoSkip:   cfg.ConversationCfg.MaxRetriesPolicy == config.PolicySkip,
		Messages: conversation.Messages{
			Acknowledgement: catalog.Message("acknowledgement", ""),
			Completed:       catalog.Message("completed", ""),
			MaxRetries:      catalog.Message("max_retries", ""),
			EmptyAnswer:     catalog.Message("empty_answer", ""),
		},
	})

	conversationUC := conversation.NewUsecase(repo, machine, cfg.Questions)

	var gateway diagnosis.Gateway
	if cfg.EnableMocks {
		logger.Info("Using mock assistant connector")
		gateway = assistant.NewMockConnector(logger)
	} else {
		logger.Info("Using assistants API connector")
		gateway = assistant.NewConnector(cfg.AssistantCfg, logger)
	}

	diagnosisUC, err := diagnosis.NewUsecase(
		gateway,
		decoder.New(),
		repo,
		catalog,
		diagnosis.WaitConfig{
			PollInterval: cfg.AssistantCfg.PollInterval,
			Timeout:      cfg.AssistantCfg.Timeout,
			SoftWait:     cfg.AssistantCfg.SoftWait,
		},
	)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("init diagnosis usecase: %w", err)
	}
	logger.Info("Use cases initialized",
		zap.Int("default_questions", len(cfg.Questions)),
		zap.String("max_retries_policy", string(cfg.ConversationCfg.MaxRetriesPolicy)),
	)

	return &core{
		conversation: conversationUC,
		diagnosis:    diagnosisUC,
		redis:        redisClient,
	}, nil
}
