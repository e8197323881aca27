package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Branding is a scope label plus branding fields. Writes return the stored
// asset fields, reads return the effective merged fields.
type Branding struct {
	Scope string `json:"scope"`
	Fields
}

type Service interface {
	UpdateAgencyBranding(ctx context.Context, userID, agencyID snowflake.ID, patch Patch) (*Branding, error)
	UpdateClientBranding(ctx context.Context, userID, clientID snowflake.ID, patch Patch) (*Branding, error)
	ResolveForAgency(ctx context.Context, userID, agencyID snowflake.ID) (*Branding, error)
	ResolveForClient(ctx context.Context, userID, clientID snowflake.ID) (*Branding, error)
	ResolveForDomain(ctx context.Context, domain string) (*Branding, error)
}

var (
	ErrDomainNotConfigured = errors.New("domain_not_configured")
)
