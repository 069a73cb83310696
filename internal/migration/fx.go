package migration

import (
	"github.com/nalotext/smsmargin/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			// SQL migrations target postgres; other dialects are for local
			// development and tests, which migrate through gorm directly.
			log.Info("skipping sql migrations", zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
