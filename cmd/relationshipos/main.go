package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/clock"
	"github.com/tvnrapp/relationship-os/internal/config"
	"github.com/tvnrapp/relationship-os/internal/migration"
	"github.com/tvnrapp/relationship-os/internal/observability"
	"github.com/tvnrapp/relationship-os/internal/server"
	"github.com/tvnrapp/relationship-os/pkg/db"
	"github.com/tvnrapp/relationship-os/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
