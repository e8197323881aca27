package providers

import (
	"github.com/smallbiznis/whitelabel/internal/providers/acme"
	"github.com/smallbiznis/whitelabel/internal/providers/dns"
	"github.com/smallbiznis/whitelabel/internal/providers/email"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(dns.NewTokenVerifier),
	fx.Provide(acme.NewPlaceholderIssuer),
	email.Module,
)
