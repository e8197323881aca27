package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/observability/metrics"
	"github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	"github.com/smallbiznis/whitelabel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Branding brandingdomain.Repository
	Authz    authorization.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	branding brandingdomain.Repository
	authz    authorization.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tenancy.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		branding: p.Branding,
		authz:    p.Authz,
		metrics:  p.Metrics,
	}
}

// CreateAgency bootstraps an agency with its first client, the owner membership
// pointed at that client and agency-level branding named after the agency.
func (s *Service) CreateAgency(ctx context.Context, ownerID snowflake.ID, req domain.CreateAgencyRequest) (*domain.AgencyResponse, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	tier, ok := domain.ParseTier(strings.ToLower(strings.TrimSpace(req.Tier)))
	if !ok {
		return nil, domain.ErrInvalidTier
	}
	clientName := strings.TrimSpace(req.PrimaryClientName)
	if clientName == "" {
		clientName = name + " Client"
	}

	now := s.clock.Now()
	agency := &domain.Agency{
		ID:        s.genID.Generate(),
		Name:      name,
		OwnerID:   ownerID,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
	client := &domain.Client{
		ID:        s.genID.Generate(),
		AgencyID:  agency.ID,
		Name:      clientName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.InsertAgency(ctx, agency); err != nil {
			return err
		}

		slug, err := s.allocateSlug(ctx, repo, agency.ID, domain.Slugify(clientName))
		if err != nil {
			return err
		}
		client.Slug = slug
		if err := repo.InsertClient(ctx, client); err != nil {
			return err
		}

		clientID := client.ID
		if err := repo.InsertMembership(ctx, &domain.Membership{
			ID:              s.genID.Generate(),
			UserID:          ownerID,
			AgencyID:        agency.ID,
			Role:            domain.RoleOwner,
			CurrentClientID: &clientID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			return err
		}

		companyName := name
		return s.branding.WithTx(tx).Insert(ctx, &brandingdomain.Asset{
			ID:        s.genID.Generate(),
			AgencyID:  agency.ID,
			Fields:    brandingdomain.Fields{CompanyName: &companyName},
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	s.metrics.RecordAgencyCreated(string(tier))
	s.log.Info("agency created",
		zap.String("agency_id", agency.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("tier", string(tier)),
		zap.String("client_id", client.ID.String()),
	)

	return &domain.AgencyResponse{Agency: *agency, DefaultClientID: client.ID}, nil
}

func (s *Service) GetAgency(ctx context.Context, userID, agencyID snowflake.ID) (*domain.AgencyResponse, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionAgencyView); err != nil {
		return nil, err
	}

	agency, err := s.repo.FindAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrAgencyNotFound
	}

	clients, err := s.repo.ListClients(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	resp := &domain.AgencyResponse{Agency: *agency}
	if len(clients) > 0 {
		resp.DefaultClientID = clients[0].ID
	}
	return resp, nil
}

func (s *Service) CreateClient(ctx context.Context, userID, agencyID snowflake.ID, req domain.CreateClientRequest) (*domain.Client, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionClientCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	base := strings.TrimSpace(req.Slug)
	if base == "" {
		base = name
	}
	base = domain.Slugify(base)

	agency, err := s.repo.FindAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrAgencyNotFound
	}

	now := s.clock.Now()
	client := &domain.Client{
		ID:        s.genID.Generate(),
		AgencyID:  agencyID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if !agency.Allows(domain.FeatureMultipleClients) {
			count, err := repo.CountClients(ctx, agencyID)
			if err != nil {
				return err
			}
			if count >= 1 {
				return domain.ErrTierRestricted
			}
		}

		slug, err := s.allocateSlug(ctx, repo, agencyID, base)
		if err != nil {
			return err
		}
		client.Slug = slug
		return repo.InsertClient(ctx, client)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	s.log.Info("client created",
		zap.String("agency_id", agencyID.String()),
		zap.String("client_id", client.ID.String()),
		zap.String("slug", client.Slug),
	)
	return client, nil
}

func (s *Service) ListClients(ctx context.Context, userID, agencyID snowflake.ID) ([]domain.Client, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionClientView); err != nil {
		return nil, err
	}
	clients, err := s.repo.ListClients(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return clients, nil
}

func (s *Service) GetContext(ctx context.Context, userID, agencyID snowflake.ID) (*domain.ContextResponse, error) {
	membership, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionContextView)
	if err != nil {
		return nil, err
	}
	return &domain.ContextResponse{
		AgencyID:        membership.AgencyID,
		UserID:          membership.UserID,
		Role:            membership.Role,
		CurrentClientID: membership.CurrentClientID,
	}, nil
}

func (s *Service) SwitchClient(ctx context.Context, userID, agencyID, clientID snowflake.ID) (*domain.Membership, error) {
	membership, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionContextSwitch)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.AgencyID != agencyID {
		return nil, domain.ErrClientNotInAgency
	}

	id := client.ID
	membership.CurrentClientID = &id
	membership.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.log.Info("current client switched",
		zap.String("agency_id", agencyID.String()),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID.String()),
	)
	return membership, nil
}

func (s *Service) allocateSlug(ctx context.Context, repo domain.Repository, agencyID snowflake.ID, base string) (string, error) {
	existing, err := repo.ListSlugs(ctx, agencyID, base)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, slug := range existing {
		taken[slug] = struct{}{}
	}
	return domain.UniqueSlug(base, taken), nil
}
