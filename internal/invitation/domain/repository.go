package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, invitation *Invitation) error
	// UpdateStatus only applies to a stored invitation that is still pending.
	UpdateStatus(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Invitation, error)
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	ListByAgency(ctx context.Context, agencyID snowflake.ID) ([]Invitation, error)
}
