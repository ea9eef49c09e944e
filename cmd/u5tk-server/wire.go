//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"
	"github.com/yola1107/kratos/v2"
	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/conf"
	"github.com/longguai/game-server/internal/server"
	"github.com/longguai/game-server/internal/service"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Room, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, service.ProviderSet, newApp))
}
