package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/config"
	"github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	"github.com/smallbiznis/whitelabel/internal/observability/metrics"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
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
	Tenancy  tenancydomain.Repository
	Authz    authorization.Service
	Verifier domain.DNSVerifier
	Issuer   domain.CertificateIssuer
	Workflow *config.WorkflowConfigHolder `optional:"true"`
	Metrics  *metrics.Metrics             `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	tenancy  tenancydomain.Repository
	authz    authorization.Service
	verifier domain.DNSVerifier
	issuer   domain.CertificateIssuer
	workflow *config.WorkflowConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customdomain.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tenancy:  p.Tenancy,
		authz:    p.Authz,
		verifier: p.Verifier,
		issuer:   p.Issuer,
		workflow: p.Workflow,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, userID, clientID snowflake.ID, req domain.CreateDomainRequest) (*domain.DomainResponse, error) {
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, userID, client.AgencyID, authorization.ActionDomainCreate); err != nil {
		return nil, err
	}

	agency, err := s.tenancy.FindAgency(ctx, client.AgencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, tenancydomain.ErrAgencyNotFound
	}
	if err := tenancydomain.EnsureFeature(agency, tenancydomain.FeatureCustomDomains); err != nil {
		return nil, err
	}

	name, err := domain.NormalizeDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByDomain(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDomainTaken
	}

	now := s.clock.Now()
	cfg := &domain.DomainConfiguration{
		ID:                s.genID.Generate(),
		ClientID:          client.ID,
		Domain:            name,
		VerificationToken: newToken(),
		Status:            domain.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, cfg); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDomainTaken
		}
		return nil, err
	}

	s.log.Info("custom domain registered",
		zap.String("domain_id", cfg.ID.String()),
		zap.String("client_id", client.ID.String()),
		zap.String("domain", name),
	)
	return s.response(cfg), nil
}

// Verify checks the published DNS value and, on success, issues the
// certificate in the same transaction. A rejected value still commits the
// attempt timestamp.
func (s *Service) Verify(ctx context.Context, userID, domainID snowflake.ID, dnsRecordValue string) (*domain.DomainResponse, error) {
	cfg, err := s.repo.FindByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrDomainNotFound
	}
	client, err := s.findClient(ctx, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, userID, client.AgencyID, authorization.ActionDomainVerify); err != nil {
		return nil, err
	}

	var rejected *domain.VerificationFailedError
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := s.clock.Now()
		cfg.LastVerificationAttempt = &now
		cfg.UpdatedAt = now

		result, err := s.verifier.Verify(ctx, cfg.VerificationToken, dnsRecordValue)
		if err != nil {
			return err
		}
		if !result.Success {
			cfg.Status = domain.StatusPending
			rejected = &domain.VerificationFailedError{Message: result.Message}
			return repo.Update(ctx, cfg)
		}

		cfg.Status = domain.StatusVerified
		cfg.VerifiedAt = &now

		cert, err := s.issuer.IssueCertificate(ctx, cfg.Domain)
		if err != nil {
			return err
		}
		pem := cert.PEM
		issuedAt := cert.IssuedAt
		cfg.CertificatePEM = &pem
		cfg.Status = domain.StatusActive
		cfg.ActivatedAt = &issuedAt
		return repo.Update(ctx, cfg)
	})
	if err != nil {
		s.metrics.RecordDomainVerification(metrics.ResultError)
		s.log.Error("domain verification failed",
			zap.String("domain_id", domainID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if rejected != nil {
		s.metrics.RecordDomainVerification(metrics.ResultRejected)
		s.log.Info("domain verification rejected",
			zap.String("domain_id", domainID.String()),
			zap.String("reason", rejected.Message),
		)
		return nil, rejected
	}

	s.metrics.RecordDomainVerification(metrics.ResultVerified)
	s.log.Info("custom domain activated",
		zap.String("domain_id", domainID.String()),
		zap.String("domain", cfg.Domain),
	)
	return s.response(cfg), nil
}

func (s *Service) List(ctx context.Context, userID, clientID snowflake.ID) ([]domain.DomainResponse, error) {
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, userID, client.AgencyID, authorization.ActionDomainView); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DomainResponse, 0, len(items))
	for i := range items {
		out = append(out, *s.response(&items[i]))
	}
	return out, nil
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

func (s *Service) response(cfg *domain.DomainConfiguration) *domain.DomainResponse {
	prefix := s.workflow.Get().Domain.RecordPrefix
	return &domain.DomainResponse{
		DomainConfiguration: *cfg,
		RecordName:          domain.RecordName(prefix, cfg.Domain),
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
