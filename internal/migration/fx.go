package migration

import (
	"github.com/smallbiznis/whitelabel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
		if cfg.Type != db.TypePostgres {
			log.Info("applying auto migrations", zap.String("type", cfg.Type))
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		log.Info("applying sql migrations")
		return RunMigrations(sqlDB)
	}),
)
