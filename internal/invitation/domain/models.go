package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

type Invitation struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	AgencyID        snowflake.ID       `gorm:"not null;index" json:"agency_id"`
	Email           string             `gorm:"type:varchar(320);not null" json:"email"`
	Role            tenancydomain.Role `gorm:"type:varchar(32);not null" json:"role"`
	Token           string             `gorm:"type:varchar(64);not null;uniqueIndex:ux_invitations_token" json:"token"`
	InvitedByUserID snowflake.ID       `gorm:"not null" json:"invited_by_user_id"`
	ClientID        *snowflake.ID      `json:"client_id"`
	Status          Status             `gorm:"type:varchar(32);not null" json:"status"`
	ExpiresAt       time.Time          `gorm:"not null" json:"expires_at"`
	AcceptedAt      *time.Time         `json:"accepted_at"`
	RevokedAt       *time.Time         `json:"revoked_at"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// ExpiredAt reports whether the invitation can no longer be accepted at now.
func (i Invitation) ExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
