package middleware

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterTTL      = time.Hour
	limiterCleanup  = 10 * time.Minute
	warningInterval = 30 * time.Second
)

type userLimit struct {
	limiter *rate.Limiter
	// warnings are themselves rate limited so a flood does not get a flood of replies
	warn *rate.Limiter
}

// RateLimiterMiddleware drops updates from users that exceed their token bucket
type RateLimiterMiddleware struct {
	limits *cache.Cache
	rate   rate.Limit
	burst  int
	logger *zap.Logger
	api    *tgbotapi.BotAPI
}

func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	api *tgbotapi.BotAPI,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits: cache.New(limiterTTL, limiterCleanup),
		rate:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:  burstSize,
		logger: logger,
		api:    api,
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID := updateIDs(update)
	if userID == 0 {
		next(update)
		return
	}

	limit := rl.userLimit(userID)
	if !limit.limiter.Allow() {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		if limit.warn.Allow() {
			rl.sendWarning(chatID)
		}
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) userLimit(userID int64) *userLimit {
	key := strconv.FormatInt(userID, 10)
	if v, ok := rl.limits.Get(key); ok {
		rl.limits.SetDefault(key, v)
		return v.(*userLimit)
	}

	limit := &userLimit{
		limiter: rate.NewLimiter(rl.rate, rl.burst),
		warn:    rate.NewLimiter(rate.Every(warningInterval), 1),
	}
	if err := rl.limits.Add(key, limit, cache.DefaultExpiration); err != nil {
		if v, ok := rl.limits.Get(key); ok {
			return v.(*userLimit)
		}
	}
	return limit
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ Too many messages. Please wait a little.")
	if _, err := rl.api.Send(msg); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// updateIDs extracts user and chat ids; zeros mean the update carries neither
func updateIDs(update tgbotapi.Update) (int64, int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID
	default:
		return 0, 0
	}
}
