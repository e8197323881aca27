package authorization

import (
	"context"
	_ "embed"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     tenancydomain.Repository
	Enforcer *casbin.SyncedEnforcer `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	repo     tenancydomain.Repository
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer persisted through the gorm adapter and seeds
// the role policies.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewMemoryEnforcer builds a seeded enforcer without persistence.
func NewMemoryEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		repo:     p.Repo,
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) ResolveMembership(ctx context.Context, userID, agencyID snowflake.ID) (*tenancydomain.Membership, error) {
	if userID == 0 || agencyID == 0 {
		return nil, ErrNotAMember
	}
	membership, err := s.repo.FindMembership(ctx, userID, agencyID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrNotAMember
	}
	return membership, nil
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID, agencyID snowflake.ID, action string) (*tenancydomain.Membership, error) {
	roles, ok := AllowedRoles(action)
	if !ok {
		return nil, ErrInvalidAction
	}

	membership, err := s.ResolveMembership(ctx, userID, agencyID)
	if err != nil {
		return nil, err
	}

	if s.enforcer == nil {
		if err := EnsureRole(membership, roles...); err != nil {
			return nil, err
		}
		return membership, nil
	}

	allowed, err := s.enforcer.Enforce(subjectForRole(membership.Role), ObjectAgency, action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("user_id", userID.String()),
			zap.String("agency_id", agencyID.String()),
			zap.String("role", string(membership.Role)),
			zap.String("action", action),
		)
		return nil, ErrInsufficientRole
	}
	return membership, nil
}
