package email

import (
	"context"

	"go.uber.org/zap"
)

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error
}

// LogProvider renders messages and logs them instead of delivering. It is
// used when no SMTP host is configured.
type LogProvider struct {
	log *zap.Logger
}

func NewLogProvider(log *zap.Logger) *LogProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogProvider{log: log.Named("email")}
}

func (p *LogProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	p.log.Info("email delivery disabled, message dropped",
		zap.Int("recipients", len(to)),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}

func (p *LogProvider) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error {
	subject, body, err := render(templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, to, subject, body)
}
