package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/migration"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/observability"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/server"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		migration.Module,
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
