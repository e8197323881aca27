package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/config"
	"github.com/smallbiznis/whitelabel/internal/migration"
	"github.com/smallbiznis/whitelabel/internal/observability"
	"github.com/smallbiznis/whitelabel/internal/server"
	"github.com/smallbiznis/whitelabel/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and the domain services behind it
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
