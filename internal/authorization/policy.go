package authorization

import (
	"github.com/casbin/casbin/v2"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
)

var (
	anyMember = []tenancydomain.Role{tenancydomain.RoleOwner, tenancydomain.RoleManager, tenancydomain.RoleAnalyst}
	managers  = []tenancydomain.Role{tenancydomain.RoleOwner, tenancydomain.RoleManager}
)

// policyTable lists the exact role set for every action.
var policyTable = map[string][]tenancydomain.Role{
	ActionAgencyView:    anyMember,
	ActionClientView:    anyMember,
	ActionContextView:   anyMember,
	ActionContextSwitch: anyMember,
	ActionBrandingView:  anyMember,
	ActionDomainView:    anyMember,

	ActionClientCreate:     managers,
	ActionBrandingUpdate:   managers,
	ActionDomainCreate:     managers,
	ActionDomainVerify:     managers,
	ActionInvitationCreate: managers,
	ActionInvitationView:   managers,
	ActionInvitationRevoke: managers,
}

// AllowedRoles returns the roles permitted to perform action.
func AllowedRoles(action string) ([]tenancydomain.Role, bool) {
	roles, ok := policyTable[action]
	return roles, ok
}

func subjectForRole(role tenancydomain.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	for action, roles := range policyTable {
		for _, role := range roles {
			if _, err := enforcer.AddPolicy(subjectForRole(role), ObjectAgency, action); err != nil {
				return err
			}
		}
	}
	return nil
}
