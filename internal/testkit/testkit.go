// Package testkit builds the shared fixtures used by service and handler tests.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/migration"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	tenancyrepo "github.com/smallbiznis/whitelabel/internal/tenancy/repository"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	userrepo "github.com/smallbiznis/whitelabel/internal/user/repository"
	"github.com/smallbiznis/whitelabel/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var Epoch = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

type Env struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Node    *snowflake.Node
	Clock   *clock.FakeClock
	Users   userdomain.Repository
	Tenancy tenancydomain.Repository
	Authz   authorization.Service
}

// New opens a migrated in-memory database with a fake clock at Epoch.
func New(t *testing.T) *Env {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	tenancy := tenancyrepo.NewRepository(conn)

	return &Env{
		DB:      conn,
		Log:     log,
		Node:    node,
		Clock:   clock.NewFakeClock(Epoch),
		Users:   userrepo.NewRepository(conn),
		Tenancy: tenancy,
		Authz: authorization.NewService(authorization.Params{
			Log:      log,
			Repo:     tenancy,
			Enforcer: enforcer,
		}),
	}
}

// User inserts a user with the given email.
func (e *Env) User(t *testing.T, email string) *userdomain.User {
	t.Helper()
	now := e.Clock.Now()
	u := &userdomain.User{
		ID:        e.Node.Generate(),
		Email:     email,
		Name:      email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.Users.Insert(context.Background(), u))
	return u
}

// Member adds a membership of user in agency with role.
func (e *Env) Member(t *testing.T, userID, agencyID snowflake.ID, role tenancydomain.Role) *tenancydomain.Membership {
	t.Helper()
	now := e.Clock.Now()
	m := &tenancydomain.Membership{
		ID:        e.Node.Generate(),
		UserID:    userID,
		AgencyID:  agencyID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.Tenancy.InsertMembership(context.Background(), m))
	return m
}
