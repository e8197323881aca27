package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

// DNSVerifier checks that the value published in DNS matches the expected token.
type DNSVerifier interface {
	Verify(ctx context.Context, expectedToken, providedValue string) (VerificationResult, error)
}

type CertificateIssuer interface {
	IssueCertificate(ctx context.Context, domainName string) (*Certificate, error)
}

type CreateDomainRequest struct {
	Domain string
}

type DomainResponse struct {
	DomainConfiguration
	RecordName string `json:"record_name"`
}

type Service interface {
	Create(ctx context.Context, userID, clientID snowflake.ID, req CreateDomainRequest) (*DomainResponse, error)
	Verify(ctx context.Context, userID, domainID snowflake.ID, dnsRecordValue string) (*DomainResponse, error)
	List(ctx context.Context, userID, clientID snowflake.ID) ([]DomainResponse, error)
}

var (
	ErrInvalidDomain      = errors.New("invalid_domain")
	ErrDomainTaken        = errors.New("domain_taken")
	ErrDomainNotFound     = errors.New("domain_not_found")
	ErrVerificationFailed = errors.New("verification_failed")
)

// VerificationFailedError carries the verifier message of a rejected attempt.
type VerificationFailedError struct {
	Message string
}

func (e *VerificationFailedError) Error() string {
	return e.Message
}

func (e *VerificationFailedError) Unwrap() error {
	return ErrVerificationFailed
}
