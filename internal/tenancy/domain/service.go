package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateAgencyRequest struct {
	Name              string
	Tier              string
	PrimaryClientName string
}

type CreateClientRequest struct {
	Name string
	Slug string
}

type AgencyResponse struct {
	Agency
	DefaultClientID snowflake.ID `json:"default_client_id"`
}

type ContextResponse struct {
	AgencyID        snowflake.ID  `json:"agency_id"`
	UserID          snowflake.ID  `json:"user_id"`
	Role            Role          `json:"role"`
	CurrentClientID *snowflake.ID `json:"current_client_id"`
}

type Service interface {
	CreateAgency(ctx context.Context, ownerID snowflake.ID, req CreateAgencyRequest) (*AgencyResponse, error)
	GetAgency(ctx context.Context, userID, agencyID snowflake.ID) (*AgencyResponse, error)
	CreateClient(ctx context.Context, userID, agencyID snowflake.ID, req CreateClientRequest) (*Client, error)
	ListClients(ctx context.Context, userID, agencyID snowflake.ID) ([]Client, error)
	GetContext(ctx context.Context, userID, agencyID snowflake.ID) (*ContextResponse, error)
	SwitchClient(ctx context.Context, userID, agencyID, clientID snowflake.ID) (*Membership, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidTier       = errors.New("invalid_tier")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrAgencyNotFound    = errors.New("agency_not_found")
	ErrClientNotFound    = errors.New("client_not_found")
	ErrTierRestricted    = errors.New("tier_restricted")
	ErrSlugConflict      = errors.New("slug_conflict")
	ErrClientNotInAgency = errors.New("client_not_in_agency")
)
