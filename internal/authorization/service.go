package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
)

const ObjectAgency = "agency"

const (
	ActionAgencyView    = "agency.view"
	ActionClientView    = "client.view"
	ActionClientCreate  = "client.create"
	ActionContextView   = "context.view"
	ActionContextSwitch = "context.switch"

	ActionBrandingView   = "branding.view"
	ActionBrandingUpdate = "branding.update"

	ActionDomainView   = "domain.view"
	ActionDomainCreate = "domain.create"
	ActionDomainVerify = "domain.verify"

	ActionInvitationView   = "invitation.view"
	ActionInvitationCreate = "invitation.create"
	ActionInvitationRevoke = "invitation.revoke"
)

type Service interface {
	// ResolveMembership returns the caller's membership in the agency.
	ResolveMembership(ctx context.Context, userID, agencyID snowflake.ID) (*tenancydomain.Membership, error)
	// Authorize resolves the membership and checks that its role may perform action.
	Authorize(ctx context.Context, userID, agencyID snowflake.ID, action string) (*tenancydomain.Membership, error)
}

var (
	ErrNotAMember       = errors.New("not_a_member")
	ErrInsufficientRole = errors.New("insufficient_role")
	ErrInvalidAction    = errors.New("invalid_action")
)

// EnsureRole accepts membership only when its role is one of allowed. Roles do
// not imply each other.
func EnsureRole(membership *tenancydomain.Membership, allowed ...tenancydomain.Role) error {
	if membership == nil {
		return ErrNotAMember
	}
	for _, role := range allowed {
		if membership.Role == role {
			return nil
		}
	}
	return ErrInsufficientRole
}
