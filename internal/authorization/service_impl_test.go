package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/migration"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	tenancyrepo "github.com/smallbiznis/whitelabel/internal/tenancy/repository"
	"github.com/smallbiznis/whitelabel/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	repo    tenancydomain.Repository
	node    *snowflake.Node
	agency  snowflake.ID
	members map[tenancydomain.Role]snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	f := &fixture{
		repo:    tenancyrepo.NewRepository(conn),
		node:    node,
		agency:  node.Generate(),
		members: map[tenancydomain.Role]snowflake.ID{},
	}
	now := time.Now().UTC()
	for _, role := range []tenancydomain.Role{tenancydomain.RoleOwner, tenancydomain.RoleManager, tenancydomain.RoleAnalyst} {
		userID := node.Generate()
		require.NoError(t, f.repo.InsertMembership(context.Background(), &tenancydomain.Membership{
			ID:        node.Generate(),
			UserID:    userID,
			AgencyID:  f.agency,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}))
		f.members[role] = userID
	}
	return f
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	f := newFixture(t)
	enforcer, err := NewMemoryEnforcer()
	require.NoError(t, err)

	services := map[string]Service{
		"casbin":   NewService(Params{Log: zaptest.NewLogger(t), Repo: f.repo, Enforcer: enforcer}),
		"fallback": NewService(Params{Log: zaptest.NewLogger(t), Repo: f.repo}),
	}

	for name, svc := range services {
		t.Run(name, func(t *testing.T) {
			for action, allowed := range policyTable {
				for role, userID := range f.members {
					membership, err := svc.Authorize(context.Background(), userID, f.agency, action)
					if containsRole(allowed, role) {
						require.NoError(t, err, "%s %s", role, action)
						assert.Equal(t, role, membership.Role)
						continue
					}
					assert.ErrorIs(t, err, ErrInsufficientRole, "%s %s", role, action)
					assert.Nil(t, membership)
				}
			}
		})
	}
}

func TestAuthorizeNonMember(t *testing.T) {
	f := newFixture(t)
	svc := NewService(Params{Log: zaptest.NewLogger(t), Repo: f.repo})

	_, err := svc.Authorize(context.Background(), f.node.Generate(), f.agency, ActionAgencyView)
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = svc.Authorize(context.Background(), f.members[tenancydomain.RoleOwner], f.node.Generate(), ActionAgencyView)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestAuthorizeUnknownAction(t *testing.T) {
	f := newFixture(t)
	svc := NewService(Params{Log: zaptest.NewLogger(t), Repo: f.repo})

	_, err := svc.Authorize(context.Background(), f.members[tenancydomain.RoleOwner], f.agency, "agency.delete")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestEnsureRole(t *testing.T) {
	assert.ErrorIs(t, EnsureRole(nil, tenancydomain.RoleOwner), ErrNotAMember)
	m := &tenancydomain.Membership{Role: tenancydomain.RoleManager}
	assert.NoError(t, EnsureRole(m, tenancydomain.RoleOwner, tenancydomain.RoleManager))
	assert.ErrorIs(t, EnsureRole(m, tenancydomain.RoleOwner), ErrInsufficientRole)
}

func containsRole(roles []tenancydomain.Role, role tenancydomain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
