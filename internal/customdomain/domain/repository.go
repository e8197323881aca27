package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, cfg *DomainConfiguration) error
	Update(ctx context.Context, cfg *DomainConfiguration) error
	FindByID(ctx context.Context, id snowflake.ID) (*DomainConfiguration, error)
	FindByDomain(ctx context.Context, domain string) (*DomainConfiguration, error)
	// FindResolvable returns the domain only while it is verified or active.
	FindResolvable(ctx context.Context, domain string) (*DomainConfiguration, error)
	ListByClient(ctx context.Context, clientID snowflake.ID) ([]DomainConfiguration, error)
}
