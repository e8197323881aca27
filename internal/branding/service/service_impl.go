package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	"github.com/smallbiznis/whitelabel/internal/branding/domain"
	"github.com/smallbiznis/whitelabel/internal/clock"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	"github.com/smallbiznis/whitelabel/internal/observability/metrics"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Tenancy tenancydomain.Repository
	Domains customdomaindomain.Repository
	Authz   authorization.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	tenancy tenancydomain.Repository
	domains customdomaindomain.Repository
	authz   authorization.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("branding.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		tenancy: p.Tenancy,
		domains: p.Domains,
		authz:   p.Authz,
		metrics: p.Metrics,
	}
}

func (s *Service) UpdateAgencyBranding(ctx context.Context, userID, agencyID snowflake.ID, patch domain.Patch) (*domain.Branding, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionBrandingUpdate); err != nil {
		return nil, err
	}

	agency, err := s.tenancy.FindAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, tenancydomain.ErrAgencyNotFound
	}

	asset, err := s.upsert(ctx, agencyID, nil, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("agency branding updated", zap.String("agency_id", agencyID.String()))
	return &domain.Branding{Scope: domain.AgencyScope(agencyID), Fields: asset.Fields}, nil
}

func (s *Service) UpdateClientBranding(ctx context.Context, userID, clientID snowflake.ID, patch domain.Patch) (*domain.Branding, error) {
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, userID, client.AgencyID, authorization.ActionBrandingUpdate); err != nil {
		return nil, err
	}

	id := client.ID
	asset, err := s.upsert(ctx, client.AgencyID, &id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("client branding updated",
		zap.String("agency_id", client.AgencyID.String()),
		zap.String("client_id", clientID.String()),
	)
	return &domain.Branding{Scope: domain.ClientScope(clientID), Fields: asset.Fields}, nil
}

func (s *Service) ResolveForAgency(ctx context.Context, userID, agencyID snowflake.ID) (*domain.Branding, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionBrandingView); err != nil {
		return nil, err
	}

	agencyAsset, err := s.repo.FindAgencyAsset(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBrandingLookup("agency", hitOrMiss(agencyAsset != nil))
	return &domain.Branding{Scope: domain.AgencyScope(agencyID), Fields: domain.Merge(agencyAsset)}, nil
}

func (s *Service) ResolveForClient(ctx context.Context, userID, clientID snowflake.ID) (*domain.Branding, error) {
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, userID, client.AgencyID, authorization.ActionBrandingView); err != nil {
		return nil, err
	}

	fields, err := s.resolve(ctx, client)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBrandingLookup("client", metrics.LookupHit)
	return &domain.Branding{Scope: domain.ClientScope(clientID), Fields: fields}, nil
}

// ResolveForDomain serves the public lookup used by portals on custom domains.
// Domains that are not verified or active resolve to nothing.
func (s *Service) ResolveForDomain(ctx context.Context, rawDomain string) (*domain.Branding, error) {
	name, err := customdomaindomain.NormalizeDomain(rawDomain)
	if err != nil {
		return nil, err
	}

	cfg, err := s.domains.FindResolvable(ctx, name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		s.metrics.RecordBrandingLookup("domain", metrics.LookupMiss)
		return nil, domain.ErrDomainNotConfigured
	}

	client, err := s.findClient(ctx, cfg.ClientID)
	if err != nil {
		return nil, err
	}

	fields, err := s.resolve(ctx, client)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBrandingLookup("domain", metrics.LookupHit)
	return &domain.Branding{Scope: domain.DomainScope(name), Fields: fields}, nil
}

func (s *Service) resolve(ctx context.Context, client *tenancydomain.Client) (domain.Fields, error) {
	agencyAsset, err := s.repo.FindAgencyAsset(ctx, client.AgencyID)
	if err != nil {
		return domain.Fields{}, err
	}
	clientAsset, err := s.repo.FindClientAsset(ctx, client.AgencyID, client.ID)
	if err != nil {
		return domain.Fields{}, err
	}
	return domain.Merge(agencyAsset, clientAsset), nil
}

func (s *Service) upsert(ctx context.Context, agencyID snowflake.ID, clientID *snowflake.ID, patch domain.Patch) (*domain.Asset, error) {
	var asset *domain.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		if clientID == nil {
			asset, err = repo.FindAgencyAsset(ctx, agencyID)
		} else {
			asset, err = repo.FindClientAsset(ctx, agencyID, *clientID)
		}
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if asset == nil {
			asset = &domain.Asset{
				ID:        s.genID.Generate(),
				AgencyID:  agencyID,
				ClientID:  clientID,
				CreatedAt: now,
			}
			asset.Fields.ApplyPatch(patch)
			asset.UpdatedAt = now
			return repo.Insert(ctx, asset)
		}

		asset.Fields.ApplyPatch(patch)
		asset.UpdatedAt = now
		return repo.Update(ctx, asset)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Service) findClient(ctx context.Context, clientID snowflake.ID) (*tenancydomain.Client, error) {
	client, err := s.tenancy.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, tenancydomain.ErrClientNotFound
	}
	return client, nil
}

func hitOrMiss(found bool) string {
	if found {
		return metrics.LookupHit
	}
	return metrics.LookupMiss
}
