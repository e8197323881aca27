package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository lookups return (nil, nil) when no row matches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	InsertAgency(ctx context.Context, agency *Agency) error
	FindAgency(ctx context.Context, id snowflake.ID) (*Agency, error)

	InsertClient(ctx context.Context, client *Client) error
	FindClient(ctx context.Context, id snowflake.ID) (*Client, error)
	ListClients(ctx context.Context, agencyID snowflake.ID) ([]Client, error)
	CountClients(ctx context.Context, agencyID snowflake.ID) (int64, error)
	// ListSlugs returns the slugs in the agency equal to base or starting with "base-".
	ListSlugs(ctx context.Context, agencyID snowflake.ID, base string) ([]string, error)

	InsertMembership(ctx context.Context, membership *Membership) error
	FindMembership(ctx context.Context, userID, agencyID snowflake.ID) (*Membership, error)
	UpdateMembership(ctx context.Context, membership *Membership) error
}
