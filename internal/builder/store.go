package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// setupSessionStore picks the configured session backend. The returned client is
// nil for the in-memory store.
func setupSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (
	repository.SessionRepository, *redis.Client, error,
) {
	switch cfg.SessionCfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisCfg.Addr,
			Password: cfg.RedisCfg.Password,
			DB:       cfg.RedisCfg.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisCfg.Addr, err)
		}

		logger.Info("redis session store connected",
			zap.String("addr", cfg.RedisCfg.Addr),
			zap.Int("db", cfg.RedisCfg.DB),
			zap.Duration("ttl", cfg.SessionCfg.TTL),
		)
		return repository.NewSessionRedis(client, cfg.RedisCfg.KeyPrefix, cfg.SessionCfg.TTL), client, nil
	default:
		logger.Info("in-memory session store",
			zap.Duration("ttl", cfg.SessionCfg.TTL),
			zap.Duration("cleanup_interval", cfg.SessionCfg.CleanupInterval),
		)
		return repository.NewSessionMemory(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval), nil, nil
	}
}
