package tenancy

import (
	"github.com/smallbiznis/whitelabel/internal/tenancy/repository"
	"github.com/smallbiznis/whitelabel/internal/tenancy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
