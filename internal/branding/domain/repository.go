package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, asset *Asset) error
	Update(ctx context.Context, asset *Asset) error
	FindAgencyAsset(ctx context.Context, agencyID snowflake.ID) (*Asset, error)
	FindClientAsset(ctx context.Context, agencyID, clientID snowflake.ID) (*Asset, error)
}
