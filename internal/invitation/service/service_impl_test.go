package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/whitelabel/internal/authorization"
	brandingrepo "github.com/smallbiznis/whitelabel/internal/branding/repository"
	"github.com/smallbiznis/whitelabel/internal/config"
	"github.com/smallbiznis/whitelabel/internal/invitation/domain"
	"github.com/smallbiznis/whitelabel/internal/invitation/repository"
	"github.com/smallbiznis/whitelabel/internal/providers/email"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	tenancyservice "github.com/smallbiznis/whitelabel/internal/tenancy/service"
	"github.com/smallbiznis/whitelabel/internal/testkit"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to       []string
	template string
	data     map[string]any
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return m.err
}

func (m *recordingMailer) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error {
	m.sent = append(m.sent, sentMail{to: to, template: templateName, data: data})
	return m.err
}

// staleRepo serves every invitation as still pending, the view a concurrent
// request holds before the other one commits.
type staleRepo struct {
	domain.Repository
}

func (r staleRepo) WithTx(tx *gorm.DB) domain.Repository {
	return staleRepo{Repository: r.Repository.WithTx(tx)}
}

func (r staleRepo) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := r.Repository.FindByToken(ctx, token)
	if inv != nil {
		inv.Status = domain.StatusPending
		inv.AcceptedAt = nil
	}
	return inv, err
}

type failingMemberships struct {
	tenancydomain.Repository
	err error
}

func (f failingMemberships) WithTx(tx *gorm.DB) tenancydomain.Repository {
	return failingMemberships{Repository: f.Repository.WithTx(tx), err: f.err}
}

func (f failingMemberships) InsertMembership(context.Context, *tenancydomain.Membership) error {
	return f.err
}

type harness struct {
	env     *testkit.Env
	mail    *recordingMailer
	repo    domain.Repository
	svc     domain.Service
	tenancy tenancydomain.Service
	owner   *userdomain.User
	agency  *tenancydomain.AgencyResponse
}

func newHarness(t *testing.T, tier string) *harness {
	t.Helper()
	env := testkit.New(t)
	repo := repository.NewRepository(env.DB)

	mail := &recordingMailer{}

	h := &harness{
		env:  env,
		mail: mail,
		repo: repo,
		svc: New(Params{
			DB:       env.DB,
			Log:      env.Log,
			GenID:    env.Node,
			Clock:    env.Clock,
			Repo:     repo,
			Tenancy:  env.Tenancy,
			Users:    env.Users,
			Authz:    env.Authz,
			Workflow: config.NewStaticWorkflowConfigHolder(config.WorkflowConfig{
				Invitation: config.InvitationConfig{TTL: 24 * time.Hour, PortalURL: "https://portal.test"},
				Domain:     config.DomainConfig{RecordPrefix: config.DefaultDomainRecordPrefix},
			}),
			Email: mail,
		}),
		tenancy: tenancyservice.New(tenancyservice.Params{
			DB:       env.DB,
			Log:      env.Log,
			GenID:    env.Node,
			Clock:    env.Clock,
			Repo:     env.Tenancy,
			Branding: brandingrepo.NewRepository(env.DB),
			Authz:    env.Authz,
		}),
	}

	h.owner = env.User(t, "owner@acme.test")
	agency, err := h.tenancy.CreateAgency(context.Background(), h.owner.ID, tenancydomain.CreateAgencyRequest{Name: "Acme", Tier: tier})
	require.NoError(t, err)
	h.agency = agency
	return h
}

func TestIssueAndAccept(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()
	clientID := h.agency.DefaultClientID

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{
		Email:    "Analyst@Acme.test",
		Role:     "analyst",
		ClientID: &clientID,
	})
	require.NoError(t, err)
	assert.Equal(t, "analyst@acme.test", inv.Email)
	assert.Equal(t, domain.StatusPending, inv.Status)
	assert.Len(t, inv.Token, 32)
	assert.True(t, inv.ExpiresAt.Equal(testkit.Epoch.Add(24*time.Hour)))

	invitee := h.env.User(t, "analyst@acme.test")
	membership, err := h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "ANALYST@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, tenancydomain.RoleAnalyst, membership.Role)
	require.NotNil(t, membership.CurrentClientID)
	assert.Equal(t, clientID, *membership.CurrentClientID)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)

	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "analyst@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestAcceptUpdatesExistingMembership(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	member := h.env.User(t, "manager@acme.test")
	h.env.Member(t, member.ID, h.agency.ID, tenancydomain.RoleAnalyst)

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "manager@acme.test", Role: "manager"})
	require.NoError(t, err)

	membership, err := h.svc.Accept(ctx, member.ID, inv.Token, domain.AcceptInvitationRequest{Email: "manager@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, tenancydomain.RoleManager, membership.Role)
	assert.Nil(t, membership.CurrentClientID)

	stored, err := h.env.Tenancy.FindMembership(ctx, member.ID, h.agency.ID)
	require.NoError(t, err)
	assert.Equal(t, tenancydomain.RoleManager, stored.Role)
}

func TestAcceptExpiredPersistsStatus(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "late@acme.test", Role: "analyst"})
	require.NoError(t, err)
	invitee := h.env.User(t, "late@acme.test")

	h.env.Clock.Advance(24 * time.Hour)
	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "late@acme.test"})
	assert.ErrorIs(t, err, domain.ErrExpired)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)

	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "late@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	membership, err := h.env.Tenancy.FindMembership(ctx, invitee.ID, h.agency.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestAcceptEmailMismatch(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "invitee@acme.test", Role: "analyst"})
	require.NoError(t, err)

	invitee := h.env.User(t, "invitee@acme.test")
	other := h.env.User(t, "other@acme.test")

	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "other@acme.test"})
	assert.ErrorIs(t, err, domain.ErrEmailMismatch)

	_, err = h.svc.Accept(ctx, other.ID, inv.Token, domain.AcceptInvitationRequest{Email: "invitee@acme.test"})
	assert.ErrorIs(t, err, domain.ErrEmailMismatch)

	_, err = h.svc.Accept(ctx, invitee.ID, "missing", domain.AcceptInvitationRequest{Email: "invitee@acme.test"})
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)

	_, err = h.svc.Accept(ctx, invitee.ID, "  ", domain.AcceptInvitationRequest{Email: "invitee@acme.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestIssueValidation(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	other, err := h.tenancy.CreateAgency(ctx, h.owner.ID, tenancydomain.CreateAgencyRequest{Name: "Other", Tier: "agency"})
	require.NoError(t, err)
	foreignClient := other.DefaultClientID

	cases := []struct {
		name    string
		req     domain.IssueInvitationRequest
		wantErr error
	}{
		{name: "bad email", req: domain.IssueInvitationRequest{Email: "nope", Role: "analyst"}, wantErr: domain.ErrInvalidEmail},
		{name: "bad role", req: domain.IssueInvitationRequest{Email: "a@acme.test", Role: "admin"}, wantErr: domain.ErrInvalidRole},
		{name: "foreign client", req: domain.IssueInvitationRequest{Email: "a@acme.test", Role: "analyst", ClientID: &foreignClient}, wantErr: tenancydomain.ErrClientNotInAgency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestIssueGates(t *testing.T) {
	h := newHarness(t, "basic")
	ctx := context.Background()

	_, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "a@acme.test", Role: "analyst"})
	assert.ErrorIs(t, err, tenancydomain.ErrTierRestricted)

	analyst := h.env.User(t, "analyst@acme.test")
	h.env.Member(t, analyst.ID, h.agency.ID, tenancydomain.RoleAnalyst)
	_, err = h.svc.Issue(ctx, analyst.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "a@acme.test", Role: "analyst"})
	assert.ErrorIs(t, err, authorization.ErrInsufficientRole)
}

func TestListAndRevoke(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "a@acme.test", Role: "manager"})
	require.NoError(t, err)

	items, err := h.svc.List(ctx, h.owner.ID, h.agency.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	revoked, err := h.svc.Revoke(ctx, h.owner.ID, h.agency.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokedAt)

	_, err = h.svc.Revoke(ctx, h.owner.ID, h.agency.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = h.svc.Revoke(ctx, h.owner.ID, h.agency.ID, h.env.Node.Generate())
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)

	invitee := h.env.User(t, "a@acme.test")
	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "a@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestIssueMailsInvitee(t *testing.T) {
	h := newHarness(t, "agency")

	inv, err := h.svc.Issue(context.Background(), h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{
		Email: "New@Acme.test",
		Role:  "manager",
	})
	require.NoError(t, err)

	require.Len(t, h.mail.sent, 1)
	sent := h.mail.sent[0]
	assert.Equal(t, []string{"new@acme.test"}, sent.to)
	assert.Equal(t, email.TemplateInviteMember, sent.template)
	assert.Equal(t, "Acme", sent.data["agency_name"])
	assert.Equal(t, "manager", sent.data["role"])
	assert.Equal(t, "https://portal.test/invitations/"+inv.Token, sent.data["accept_url"])
}

func TestIssueSurvivesMailFailure(t *testing.T) {
	h := newHarness(t, "agency")
	h.mail.err = errors.New("smtp down")

	inv, err := h.svc.Issue(context.Background(), h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{
		Email: "new@acme.test",
		Role:  "analyst",
	})
	require.NoError(t, err)

	stored, err := h.repo.FindByToken(context.Background(), inv.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

// serviceWith builds a second service over the same database with swapped
// repositories.
func (h *harness) serviceWith(repo domain.Repository, tenancy tenancydomain.Repository) domain.Service {
	return New(Params{
		DB:      h.env.DB,
		Log:     h.env.Log,
		GenID:   h.env.Node,
		Clock:   h.env.Clock,
		Repo:    repo,
		Tenancy: tenancy,
		Users:   h.env.Users,
		Authz:   h.env.Authz,
	})
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	member := h.env.User(t, "manager@acme.test")
	h.env.Member(t, member.ID, h.agency.ID, tenancydomain.RoleAnalyst)

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "manager@acme.test", Role: "manager"})
	require.NoError(t, err)

	_, err = h.svc.Accept(ctx, member.ID, inv.Token, domain.AcceptInvitationRequest{Email: "manager@acme.test"})
	require.NoError(t, err)
	first, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	h.env.Clock.Advance(time.Minute)
	late := h.serviceWith(staleRepo{Repository: h.repo}, h.env.Tenancy)
	_, err = late.Accept(ctx, member.ID, inv.Token, domain.AcceptInvitationRequest{Email: "manager@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)
	assert.True(t, first.AcceptedAt.Equal(*stored.AcceptedAt))
}

func TestAcceptRollsBackOnMembershipFailure(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "new@acme.test", Role: "analyst"})
	require.NoError(t, err)
	invitee := h.env.User(t, "new@acme.test")

	boom := errors.New("membership insert failed")
	svc := h.serviceWith(h.repo, failingMemberships{Repository: h.env.Tenancy, err: boom})
	_, err = svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "new@acme.test"})
	require.ErrorIs(t, err, boom)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Nil(t, stored.AcceptedAt)

	membership, err := h.env.Tenancy.FindMembership(ctx, invitee.ID, h.agency.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)

	// the token is still usable once the write succeeds
	_, err = h.svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "new@acme.test"})
	require.NoError(t, err)
}

func TestAcceptMembershipRaceIsConflict(t *testing.T) {
	h := newHarness(t, "agency")
	ctx := context.Background()

	inv, err := h.svc.Issue(ctx, h.owner.ID, h.agency.ID, domain.IssueInvitationRequest{Email: "new@acme.test", Role: "analyst"})
	require.NoError(t, err)
	invitee := h.env.User(t, "new@acme.test")

	dup := errors.New("UNIQUE constraint failed: memberships.user_id, memberships.agency_id")
	svc := h.serviceWith(h.repo, failingMemberships{Repository: h.env.Tenancy, err: dup})
	_, err = svc.Accept(ctx, invitee.ID, inv.Token, domain.AcceptInvitationRequest{Email: "new@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	stored, err := h.repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}
