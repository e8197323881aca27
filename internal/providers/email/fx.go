package email

import (
	"strings"

	"github.com/smallbiznis/whitelabel/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig delivers over SMTP when SMTP_HOST is set and logs otherwise.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	emailCfg := cfg.Email
	if strings.TrimSpace(emailCfg.SMTPHost) == "" {
		return NewLogProvider(log)
	}
	return NewSMTP(Config{
		Host:     emailCfg.SMTPHost,
		Port:     emailCfg.SMTPPort,
		Username: emailCfg.SMTPUsername,
		Password: emailCfg.SMTPPassword,
		From:     emailCfg.SMTPFrom,
	})
}
