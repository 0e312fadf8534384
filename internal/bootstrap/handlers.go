package bootstrap

import (
	"log/slog"

	"github.com/eleven-am/pose-coach/internal/apikey"
	"github.com/eleven-am/pose-coach/internal/comparison"
	"github.com/eleven-am/pose-coach/internal/exercise"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	ExerciseHandler   *exercise.Handler
	ComparisonHandler *comparison.Handler
	APIKeyHandler     *apikey.Handler
	APIKeyStore       *apikey.Store
	Logger            *slog.Logger
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/v1", apikey.Middleware(params.APIKeyStore, apikey.RoleClient, params.Logger))
	params.ExerciseHandler.RegisterRoutes(api.Group("/exercises"))
	params.ComparisonHandler.RegisterRoutes(api)

	admin := e.Group("/v1/admin", apikey.Middleware(params.APIKeyStore, apikey.RoleAdmin, params.Logger))
	params.ExerciseHandler.RegisterAdminRoutes(admin.Group("/exercises"))
	params.APIKeyHandler.RegisterRoutes(admin.Group("/apikeys"))
}

func ProvideExerciseHandler(store *exercise.Store, service *comparison.Service, logger *slog.Logger) *exercise.Handler {
	return exercise.NewHandler(store, service, logger)
}

func ProvideComparisonHandler(service *comparison.Service, cfg *Config, logger *slog.Logger) *comparison.Handler {
	return comparison.NewHandler(service, cfg.UploadDir, logger)
}

func ProvideAPIKeyHandler(store *apikey.Store, logger *slog.Logger) *apikey.Handler {
	return apikey.NewHandler(store, logger)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideExerciseHandler,
		ProvideComparisonHandler,
		ProvideAPIKeyHandler,
	),
	fx.Invoke(RegisterRoutes),
)
