package branding

import (
	"github.com/smallbiznis/whitelabel/internal/branding/repository"
	"github.com/smallbiznis/whitelabel/internal/branding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branding.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
