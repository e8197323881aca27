package dns

import (
	"context"
	"strings"

	"github.com/smallbiznis/whitelabel/internal/customdomain/domain"
)

const (
	MessageMismatch = "DNS record value does not match verification token"
	MessageVerified = "Domain ownership verified"
)

// TokenVerifier compares the value the caller read from DNS against the
// expected token. It performs no network lookups.
type TokenVerifier struct{}

func NewTokenVerifier() domain.DNSVerifier {
	return &TokenVerifier{}
}

func (v *TokenVerifier) Verify(ctx context.Context, expectedToken, providedValue string) (domain.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.VerificationResult{}, err
	}
	if strings.TrimSpace(providedValue) != strings.TrimSpace(expectedToken) {
		return domain.VerificationResult{Success: false, Message: MessageMismatch}, nil
	}
	return domain.VerificationResult{Success: true, Message: MessageVerified}, nil
}
