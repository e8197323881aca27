package invitation

import (
	"github.com/smallbiznis/whitelabel/internal/invitation/repository"
	"github.com/smallbiznis/whitelabel/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
