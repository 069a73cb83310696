package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nalotext/smsmargin/internal/clock"
	"github.com/nalotext/smsmargin/internal/config"
	"github.com/nalotext/smsmargin/internal/migration"
	"github.com/nalotext/smsmargin/internal/observability"
	"github.com/nalotext/smsmargin/internal/scheduler"
	"github.com/nalotext/smsmargin/internal/server"
	"github.com/nalotext/smsmargin/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
