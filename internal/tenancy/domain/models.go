package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Tier string

const (
	TierBasic  Tier = "basic"
	TierAgency Tier = "agency"
)

func ParseTier(value string) (Tier, bool) {
	switch Tier(value) {
	case "":
		return TierBasic, true
	case TierBasic, TierAgency:
		return Tier(value), true
	default:
		return "", false
	}
}

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleAnalyst Role = "analyst"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleOwner, RoleManager, RoleAnalyst:
		return Role(value), true
	default:
		return "", false
	}
}

type Agency struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   snowflake.ID `gorm:"not null;index" json:"owner_id"`
	Tier      Tier         `gorm:"type:varchar(32);not null" json:"tier"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Agency) TableName() string { return "agencies" }

type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AgencyID  snowflake.ID `gorm:"not null;uniqueIndex:ux_clients_agency_slug,priority:1" json:"agency_id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string       `gorm:"type:varchar(255);not null;uniqueIndex:ux_clients_agency_slug,priority:2" json:"slug"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

type Membership struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID  `gorm:"not null;uniqueIndex:ux_memberships_user_agency,priority:1" json:"user_id"`
	AgencyID        snowflake.ID  `gorm:"not null;uniqueIndex:ux_memberships_user_agency,priority:2;index" json:"agency_id"`
	Role            Role          `gorm:"type:varchar(32);not null" json:"role"`
	CurrentClientID *snowflake.ID `json:"current_client_id"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
