package customdomain

import (
	"github.com/smallbiznis/whitelabel/internal/customdomain/repository"
	"github.com/smallbiznis/whitelabel/internal/customdomain/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customdomain.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
