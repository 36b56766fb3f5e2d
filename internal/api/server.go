package api

import (
	"net/http"

	"github.com/futig/style-backend/internal/api/conversation"
	"github.com/futig/style-backend/internal/api/diagnosis"
	"github.com/futig/style-backend/internal/api/docs"
	"github.com/futig/style-backend/internal/api/middleware"
	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const serviceName = "your-mode-backend"

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	cfg *config.Config,
	diagnosisHandler *diagnosis.Handler,
	conversationHandler *conversation.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	limiter := middleware.NewRateLimiter(cfg.RateLimitCfg.RPS, cfg.RateLimitCfg.Burst)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	docs.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		diagnosis.RegisterRoutes(r, diagnosisHandler)
		conversation.RegisterRoutes(r, conversationHandler)
	})

	return r
}
