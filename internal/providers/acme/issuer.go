package acme

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	"go.uber.org/zap"
)

// PlaceholderIssuer returns a syntactically framed placeholder certificate
// instead of talking to an ACME directory.
type PlaceholderIssuer struct {
	clock clock.Clock
	log   *zap.Logger
}

func NewPlaceholderIssuer(clk clock.Clock, log *zap.Logger) domain.CertificateIssuer {
	return &PlaceholderIssuer{
		clock: clk,
		log:   log.Named("acme.issuer"),
	}
}

func (i *PlaceholderIssuer) IssueCertificate(ctx context.Context, domainName string) (*domain.Certificate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(domainName)
	if name == "" {
		return nil, fmt.Errorf("issue certificate: %w", domain.ErrInvalidDomain)
	}

	issuedAt := i.clock.Now()
	pem := fmt.Sprintf("-----BEGIN CERTIFICATE-----\nMock Certificate for %s issued at %s\n-----END CERTIFICATE-----",
		name,
		issuedAt.Format(time.RFC3339Nano),
	)

	i.log.Info("certificate issued", zap.String("domain", name), zap.Time("issued_at", issuedAt))

	return &domain.Certificate{
		Domain:   name,
		PEM:      pem,
		IssuedAt: issuedAt,
	}, nil
}
