package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
)

type IssueInvitationRequest struct {
	Email    string
	Role     string
	ClientID *snowflake.ID
}

type AcceptInvitationRequest struct {
	Email string
}

type Service interface {
	Issue(ctx context.Context, userID, agencyID snowflake.ID, req IssueInvitationRequest) (*Invitation, error)
	Accept(ctx context.Context, userID snowflake.ID, token string, req AcceptInvitationRequest) (*tenancydomain.Membership, error)
	List(ctx context.Context, userID, agencyID snowflake.ID) ([]Invitation, error)
	Revoke(ctx context.Context, userID, agencyID, invitationID snowflake.ID) (*Invitation, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvitationNotFound = errors.New("invitation_not_found")
	ErrAlreadyProcessed   = errors.New("invitation_already_processed")
	ErrExpired            = errors.New("invitation_expired")
	ErrEmailMismatch      = errors.New("email_mismatch")
)
