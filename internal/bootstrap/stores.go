package bootstrap

import (
	"github.com/eleven-am/pose-coach/internal/apikey"
	"github.com/eleven-am/pose-coach/internal/comparison"
	"github.com/eleven-am/pose-coach/internal/exercise"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideExerciseStore(db *gorm.DB) *exercise.Store {
	return exercise.NewStore(db)
}

func ProvideComparisonStore(db *gorm.DB) *comparison.Store {
	return comparison.NewStore(db)
}

func ProvideAPIKeyStore(db *gorm.DB) *apikey.Store {
	return apikey.NewStore(db)
}

func ProvideReferenceCache(client *redis.Client, cfg *Config) *comparison.ReferenceCache {
	return comparison.NewReferenceCache(client, cfg.ReferenceCacheTTL)
}

func RunMigrations(exercises *exercise.Store, comparisons *comparison.Store, apiKeys *apikey.Store) error {
	if err := exercises.Migrate(); err != nil {
		return err
	}
	if err := comparisons.Migrate(); err != nil {
		return err
	}
	return apiKeys.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideExerciseStore,
		ProvideComparisonStore,
		ProvideAPIKeyStore,
		ProvideReferenceCache,
	),
	fx.Invoke(RunMigrations),
)
