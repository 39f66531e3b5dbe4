package migrate

import (
	"context"
	"fmt"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

// AllModels is the AutoMigrate set, ordered parents-first.
var AllModels = []any{
	&models.User{},
	&models.FarmerProfile{},
	&models.RetailerProfile{},
	&models.DeliveryProfile{},
	&models.Product{},
	&models.Order{},
	&models.OrderTracking{},
}

// MaybeRunDev brings the schema up automatically when running in dev mode
// with the flag enabled. The embedded engine always uses AutoMigrate (goose
// migrations are written for postgres); the networked engine runs goose.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "engine": client.Dialect().Name()})

	if cfg.DB.UseSQLite() {
		logg.Info(ctx, "auto-migrating embedded schema")
		if err := client.DB().WithContext(ctx).AutoMigrate(AllModels...); err != nil {
			return fmt.Errorf("auto-migrating sqlite schema: %w", err)
		}
		return nil
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
