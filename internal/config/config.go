package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/style-backend/internal/entity"
	pkgRetry "github.com/futig/style-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":8000"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://style-me-wine.vercel.app,http://localhost:3000,http://localhost:5173,https://spring.yourmode.co.kr,https://yourmode.co.kr"`
	RateLimitCfg       RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Remote assistants
	AssistantCfg AssistantConfig `envPrefix:"ASSISTANT_"`

	// Conversation state machine
	ConversationCfg ConversationConfig `envPrefix:"CONVERSATION_"`

	// Session storage
	SessionCfg SessionConfig `envPrefix:"SESSION_"`
	RedisCfg   RedisConfig   `envPrefix:"REDIS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Catalog and question bank overrides; embedded defaults are used when empty
	CatalogPath   string `env:"CATALOG_PATH"`
	QuestionsPath string `env:"QUESTIONS_PATH"`

	// Loaded from files, not from env
	Catalog   *Catalog
	Questions []entity.Question

	// Environment (set from flag, not from env var)
	Environment string
}

type AssistantConfig struct {
	HTTPClientConfig
	APIKey       string               `env:"API_KEY"`
	BaseURL      string               `env:"BASE_URL"`
	BodyID       string               `env:"BODY_ID"`
	StyleID      string               `env:"STYLE_ID"`
	ChatID       string               `env:"CHAT_ID"`
	Timeout      time.Duration        `env:"TIMEOUT" envDefault:"60s"`
	SoftWait     time.Duration        `env:"SOFT_WAIT" envDefault:"25s"`
	PollInterval time.Duration        `env:"POLL_INTERVAL" envDefault:"300ms"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// AssistantID resolves the configured assistant for a kind.
func (c AssistantConfig) AssistantID(kind entity.AssistantKind) string {
	switch kind {
	case entity.AssistantBody:
		return c.BodyID
	case entity.AssistantStyle:
		return c.StyleID
	case entity.AssistantChat:
		return c.ChatID
	default:
		return ""
	}
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"HTTP_CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"HTTP_KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"HTTP_IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"HTTP_RESPONSE_HEADER_TIMEOUT" envDefault:"20s"`
}

type MaxRetriesPolicy string

const (
	// PolicyManual keeps the question open until a valid answer or an explicit skip.
	PolicyManual MaxRetriesPolicy = "manual"
	// PolicySkip advances to the next question as soon as the limit is hit.
	PolicySkip MaxRetriesPolicy = "skip"
)

type ConversationConfig struct {
	MaxRetries       int              `env:"MAX_RETRIES" envDefault:"3"`
	MaxRetriesPolicy MaxRetriesPolicy `env:"MAX_RETRIES_POLICY" envDefault:"manual"`
	ChoiceTrimSpace  bool             `env:"CHOICE_TRIM_SPACE" envDefault:"false"`
	ChoiceIgnoreCase bool             `env:"CHOICE_IGNORE_CASE" envDefault:"false"`
}

type SessionBackend string

const (
	BackendMemory SessionBackend = "memory"
	BackendRedis  SessionBackend = "redis"
)

type SessionConfig struct {
	Backend         SessionBackend `env:"BACKEND" envDefault:"memory"`
	TTL             time.Duration  `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration  `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"style:session:"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RPS" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	// Format string for a self-hosted Bot API server, e.g. "http://localhost:8081/bot%s/%s"
	APIEndpoint        string        `env:"API_ENDPOINT"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ChatTTL            time.Duration `env:"CHAT_TTL" envDefault:"24h"`
	// Used only with SESSION_BACKEND=redis; kept apart from the session key space
	RedisKeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"style:chat:"`
	// How often and how long the bot polls a diagnosis that outlived the soft wait
	ResultPollInterval time.Duration `env:"RESULT_POLL_INTERVAL" envDefault:"2s"`
	ResultWait         time.Duration `env:"RESULT_WAIT" envDefault:"3m"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Missing env files are fine when variables are set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the environment, validates it and loads the catalog and question bank.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cfg.Catalog = catalog

	questions, err := LoadQuestions(cfg.QuestionsPath)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	cfg.Questions = questions

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.EnableMocks {
		if cfg.AssistantCfg.APIKey == "" {
			errors = append(errors, "ASSISTANT_API_KEY is required unless ENABLE_MOCKS is set")
		}
		ids := []struct{ name, value string }{
			{"ASSISTANT_BODY_ID", cfg.AssistantCfg.BodyID},
			{"ASSISTANT_STYLE_ID", cfg.AssistantCfg.StyleID},
			{"ASSISTANT_CHAT_ID", cfg.AssistantCfg.ChatID},
		}
		for _, id := range ids {
			if id.value == "" {
				errors = append(errors, fmt.Sprintf("%s is required unless ENABLE_MOCKS is set", id.name))
			}
		}
	}

	if cfg.AssistantCfg.PollInterval <= 0 {
		errors = append(errors, fmt.Sprintf("ASSISTANT_POLL_INTERVAL must be positive, got %s", cfg.AssistantCfg.PollInterval))
	}

	if cfg.AssistantCfg.SoftWait <= 0 || cfg.AssistantCfg.SoftWait > cfg.AssistantCfg.Timeout {
		errors = append(errors, fmt.Sprintf("ASSISTANT_SOFT_WAIT must be between 0 and ASSISTANT_TIMEOUT(%s), got %s",
			cfg.AssistantCfg.Timeout, cfg.AssistantCfg.SoftWait))
	}

	if cfg.ConversationCfg.MaxRetries < 1 || cfg.ConversationCfg.MaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("CONVERSATION_MAX_RETRIES must be between 1 and 10, got %d", cfg.ConversationCfg.MaxRetries))
	}

	switch cfg.ConversationCfg.MaxRetriesPolicy {
	case PolicyManual, PolicySkip:
	default:
		errors = append(errors, fmt.Sprintf("CONVERSATION_MAX_RETRIES_POLICY must be manual or skip, got %q", cfg.ConversationCfg.MaxRetriesPolicy))
	}

	switch cfg.SessionCfg.Backend {
	case BackendMemory, BackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("SESSION_BACKEND must be memory or redis, got %q", cfg.SessionCfg.Backend))
	}

	if cfg.RateLimitCfg.RPS <= 0 || cfg.RateLimitCfg.Burst < 1 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive, got %v/%d",
			cfg.RateLimitCfg.RPS, cfg.RateLimitCfg.Burst))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
