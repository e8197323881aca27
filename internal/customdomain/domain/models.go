package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusActive   Status = "active"
	// StatusFailed is reserved. No workflow step moves a domain into it.
	StatusFailed Status = "failed"
)

// Resolvable reports whether branding may be served for a domain in this status.
func (s Status) Resolvable() bool {
	return s == StatusVerified || s == StatusActive
}

type DomainConfiguration struct {
	ID                      snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID                snowflake.ID `gorm:"not null;index" json:"client_id"`
	Domain                  string       `gorm:"type:varchar(255);not null;uniqueIndex:ux_domain_configurations_domain" json:"domain"`
	VerificationToken       string       `gorm:"type:varchar(64);not null" json:"verification_token"`
	Status                  Status       `gorm:"type:varchar(32);not null" json:"status"`
	CertificatePEM          *string      `gorm:"column:certificate_pem;type:text" json:"certificate_pem"`
	VerifiedAt              *time.Time   `json:"verified_at"`
	ActivatedAt             *time.Time   `json:"activated_at"`
	LastVerificationAttempt *time.Time   `json:"last_verification_attempt"`
	CreatedAt               time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time    `gorm:"not null" json:"updated_at"`
}

func (DomainConfiguration) TableName() string { return "domain_configurations" }

type VerificationResult struct {
	Success bool
	Message string
}

// Certificate is an issued TLS certificate in PEM form.
type Certificate struct {
	Domain   string
	PEM      string
	IssuedAt time.Time
}
