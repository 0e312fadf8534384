package bootstrap

import (
	"github.com/eleven-am/pose-coach/internal/detector"
	"github.com/eleven-am/pose-coach/internal/health"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/labstack/echo/v4"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

type HealthParams struct {
	fx.In

	DB       *gorm.DB
	Redis    *redis.Client
	Qdrant   *qdrant.Client
	Detector detector.Detector
	Pipeline *similarity.Pipeline
	Config   *Config
}

func ProvideHealthHandler(p HealthParams) *health.Handler {
	return health.NewHandler(health.Config{
		DB:              p.DB,
		Redis:           p.Redis,
		Qdrant:          p.Qdrant,
		Detector:        p.Detector,
		Pipeline:        p.Pipeline.Config(),
		FeedbackEnabled: p.Config.OpenAIAPIKey != "",
		Version:         version,
	})
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(h.Middleware())
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
