package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/config"
	"github.com/veridocs/veridocs/internal/migration"
	"github.com/veridocs/veridocs/internal/scheduler"
	"github.com/veridocs/veridocs/internal/seed"
	"github.com/veridocs/veridocs/internal/server"
	"github.com/veridocs/veridocs/pkg/db"
	"github.com/veridocs/veridocs/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
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
