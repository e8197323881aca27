package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	"github.com/smallbiznis/whitelabel/internal/clock"
	"github.com/smallbiznis/whitelabel/internal/config"
	"github.com/smallbiznis/whitelabel/internal/invitation/domain"
	"github.com/smallbiznis/whitelabel/internal/observability/metrics"
	"github.com/smallbiznis/whitelabel/internal/providers/email"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
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
	Users    userdomain.Repository
	Authz    authorization.Service
	Workflow *config.WorkflowConfigHolder `optional:"true"`
	Metrics  *metrics.Metrics             `optional:"true"`
	Email    email.Provider               `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	tenancy  tenancydomain.Repository
	users    userdomain.Repository
	authz    authorization.Service
	workflow *config.WorkflowConfigHolder
	metrics  *metrics.Metrics
	email    email.Provider
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invitation.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tenancy:  p.Tenancy,
		users:    p.Users,
		authz:    p.Authz,
		workflow: p.Workflow,
		metrics:  p.Metrics,
		email:    p.Email,
		validate: validator.New(),
	}
}

func (s *Service) Issue(ctx context.Context, userID, agencyID snowflake.ID, req domain.IssueInvitationRequest) (*domain.Invitation, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionInvitationCreate); err != nil {
		return nil, err
	}

	agency, err := s.tenancy.FindAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, tenancydomain.ErrAgencyNotFound
	}
	if err := tenancydomain.EnsureFeature(agency, tenancydomain.FeatureInvitations); err != nil {
		return nil, err
	}

	address := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Var(address, "required,email"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	role, ok := tenancydomain.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	if req.ClientID != nil {
		client, err := s.tenancy.FindClient(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil || client.AgencyID != agencyID {
			return nil, tenancydomain.ErrClientNotInAgency
		}
	}

	workflow := s.workflow.Get()
	now := s.clock.Now()
	invitation := &domain.Invitation{
		ID:              s.genID.Generate(),
		AgencyID:        agencyID,
		Email:           address,
		Role:            role,
		Token:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		InvitedByUserID: userID,
		ClientID:        req.ClientID,
		Status:          domain.StatusPending,
		ExpiresAt:       now.Add(workflow.Invitation.TTL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, invitation); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitation(metrics.OutcomeIssued)
	s.log.Info("invitation issued",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("agency_id", agencyID.String()),
		zap.String("role", string(role)),
	)

	s.sendInvite(ctx, agency, invitation, workflow.Invitation.PortalURL)
	return invitation, nil
}

// sendInvite mails the accept link. Delivery failures are only logged.
func (s *Service) sendInvite(ctx context.Context, agency *tenancydomain.Agency, invitation *domain.Invitation, portalURL string) {
	if s.email == nil {
		return
	}
	err := email.SendInvite(ctx, s.email, email.Invite{
		To:         invitation.Email,
		AgencyName: agency.Name,
		Role:       string(invitation.Role),
		Token:      invitation.Token,
		PortalURL:  portalURL,
		ExpiresAt:  invitation.ExpiresAt,
	})
	if err != nil {
		s.log.Warn("invitation email not delivered",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
	}
}

// Accept turns a pending invitation into a membership for the caller. Expiry
// is detected here and persisted before the error is returned.
func (s *Service) Accept(ctx context.Context, userID snowflake.ID, token string, req domain.AcceptInvitationRequest) (*tenancydomain.Membership, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	invitation, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, domain.ErrInvitationNotFound
	}
	if invitation.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyProcessed
	}

	now := s.clock.Now()
	if invitation.ExpiredAt(now) {
		invitation.Status = domain.StatusExpired
		invitation.UpdatedAt = now
		if err := s.repo.UpdateStatus(ctx, invitation); err != nil {
			return nil, err
		}
		s.metrics.RecordInvitation(metrics.OutcomeExpired)
		return nil, domain.ErrExpired
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), invitation.Email) {
		return nil, domain.ErrEmailMismatch
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userdomain.ErrUnknownUser
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, domain.ErrEmailMismatch
	}

	var membership *tenancydomain.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitation.Status = domain.StatusAccepted
		invitation.AcceptedAt = &now
		invitation.UpdatedAt = now
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, invitation); err != nil {
			return err
		}

		tenancy := s.tenancy.WithTx(tx)
		existing, err := tenancy.FindMembership(ctx, userID, invitation.AgencyID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Role = invitation.Role
			if invitation.ClientID != nil {
				existing.CurrentClientID = invitation.ClientID
			}
			existing.UpdatedAt = now
			membership = existing
			return tenancy.UpdateMembership(ctx, existing)
		}

		membership = &tenancydomain.Membership{
			ID:              s.genID.Generate(),
			UserID:          userID,
			AgencyID:        invitation.AgencyID,
			Role:            invitation.Role,
			CurrentClientID: invitation.ClientID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tenancy.InsertMembership(ctx, membership)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// a concurrent accept created the membership first
			return nil, domain.ErrAlreadyProcessed
		}
		return nil, err
	}

	s.metrics.RecordInvitation(metrics.OutcomeAccepted)
	s.log.Info("invitation accepted",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("agency_id", invitation.AgencyID.String()),
		zap.String("user_id", userID.String()),
	)
	return membership, nil
}

func (s *Service) List(ctx context.Context, userID, agencyID snowflake.ID) ([]domain.Invitation, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionInvitationView); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Invitation{}
	}
	return items, nil
}

func (s *Service) Revoke(ctx context.Context, userID, agencyID, invitationID snowflake.ID) (*domain.Invitation, error) {
	if _, err := s.authz.Authorize(ctx, userID, agencyID, authorization.ActionInvitationRevoke); err != nil {
		return nil, err
	}

	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation == nil || invitation.AgencyID != agencyID {
		return nil, domain.ErrInvitationNotFound
	}
	if invitation.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyProcessed
	}

	now := s.clock.Now()
	invitation.Status = domain.StatusRevoked
	invitation.RevokedAt = &now
	invitation.UpdatedAt = now
	if err := s.repo.UpdateStatus(ctx, invitation); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitation(metrics.OutcomeRevoked)
	s.log.Info("invitation revoked",
		zap.String("invitation_id", invitationID.String()),
		zap.String("agency_id", agencyID.String()),
	)
	return invitation, nil
}
