package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
	brandingrepo "github.com/smallbiznis/whitelabel/internal/branding/repository"
	brandingservice "github.com/smallbiznis/whitelabel/internal/branding/service"
	"github.com/smallbiznis/whitelabel/internal/config"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	customdomainrepo "github.com/smallbiznis/whitelabel/internal/customdomain/repository"
	customdomainservice "github.com/smallbiznis/whitelabel/internal/customdomain/service"
	invitationdomain "github.com/smallbiznis/whitelabel/internal/invitation/domain"
	invitationrepo "github.com/smallbiznis/whitelabel/internal/invitation/repository"
	invitationservice "github.com/smallbiznis/whitelabel/internal/invitation/service"
	"github.com/smallbiznis/whitelabel/internal/observability"
	"github.com/smallbiznis/whitelabel/internal/providers/acme"
	"github.com/smallbiznis/whitelabel/internal/providers/dns"
	"github.com/smallbiznis/whitelabel/internal/ratelimit"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	tenancyservice "github.com/smallbiznis/whitelabel/internal/tenancy/service"
	"github.com/smallbiznis/whitelabel/internal/testkit"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	userservice "github.com/smallbiznis/whitelabel/internal/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	env    *testkit.Env
	engine *gin.Engine
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testkit.New(t)
	workflow := config.NewStaticWorkflowConfigHolder(config.DefaultWorkflowConfig())
	brandingRepo := brandingrepo.NewRepository(env.DB)
	domainRepo := customdomainrepo.NewRepository(env.DB)

	engine := NewEngine(observability.Config{ServiceName: "whitelabel", Environment: "test"}, nil)
	NewServer(ServerParams{
		Gin: engine,
		Cfg: config.Config{Environment: "test"},
		UserSvc: userservice.New(userservice.Params{
			Log:   env.Log,
			GenID: env.Node,
			Clock: env.Clock,
			Repo:  env.Users,
		}),
		TenancySvc: tenancyservice.New(tenancyservice.Params{
			DB:       env.DB,
			Log:      env.Log,
			GenID:    env.Node,
			Clock:    env.Clock,
			Repo:     env.Tenancy,
			Branding: brandingRepo,
			Authz:    env.Authz,
		}),
		BrandingSvc: brandingservice.New(brandingservice.Params{
			DB:      env.DB,
			Log:     env.Log,
			GenID:   env.Node,
			Clock:   env.Clock,
			Repo:    brandingRepo,
			Tenancy: env.Tenancy,
			Domains: domainRepo,
			Authz:   env.Authz,
		}),
		DomainSvc: customdomainservice.New(customdomainservice.Params{
			DB:       env.DB,
			Log:      env.Log,
			GenID:    env.Node,
			Clock:    env.Clock,
			Repo:     domainRepo,
			Tenancy:  env.Tenancy,
			Authz:    env.Authz,
			Verifier: dns.NewTokenVerifier(),
			Issuer:   acme.NewPlaceholderIssuer(env.Clock, env.Log),
			Workflow: workflow,
		}),
		InvitationSvc: invitationservice.New(invitationservice.Params{
			DB:       env.DB,
			Log:      env.Log,
			GenID:    env.Node,
			Clock:    env.Clock,
			Repo:     invitationrepo.NewRepository(env.DB),
			Tenancy:  env.Tenancy,
			Users:    env.Users,
			Authz:    env.Authz,
			Workflow: workflow,
		}),
		Limiter: limiter,
	})

	return &testServer{env: env, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path string, userID snowflake.ID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(HeaderUserID, userID.String())
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func (ts *testServer) register(t *testing.T, email string) *userdomain.User {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/users", 0, gin.H{"email": email, "name": strings.Split(email, "@")[0]})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decodeData[userdomain.User](t, rec)
	return &user
}

func (ts *testServer) createAgency(t *testing.T, ownerID snowflake.ID, tier string) tenancydomain.AgencyResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/agencies", ownerID, gin.H{
		"name":                "Acme Agency",
		"tier":                tier,
		"primary_client_name": "Client One",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[tenancydomain.AgencyResponse](t, rec)
}

func (ts *testServer) createClient(t *testing.T, ownerID, agencyID snowflake.ID, name string) tenancydomain.Client {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/agencies/"+agencyID.String()+"/clients", ownerID, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[tenancydomain.Client](t, rec)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t, nil)
	user := ts.register(t, "owner@acme.test")

	rec := ts.do(t, http.MethodGet, "/users/me", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodGet, "/users/me", ts.env.Node.Generate(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/users/me", user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData[userdomain.User](t, rec)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "owner@acme.test", me.Email)

	rec = ts.do(t, http.MethodPost, "/users", 0, gin.H{"email": "OWNER@acme.test", "name": "dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/users", 0, gin.H{"email": "not-an-email", "name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "email", payload.Errors[0].Field)
}

func TestAgencyEndToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")

	agency := ts.createAgency(t, owner.ID, "agency")
	require.NotZero(t, agency.DefaultClientID)
	assert.Equal(t, tenancydomain.TierAgency, agency.Tier)
	agencyPath := "/agencies/" + agency.ID.String()

	clientTwo := ts.createClient(t, owner.ID, agency.ID, "Client Two")
	assert.Equal(t, "client-two", clientTwo.Slug)

	rec := ts.do(t, http.MethodGet, agencyPath+"/clients", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]tenancydomain.Client](t, rec), 2)

	clientPath := "/clients/" + clientTwo.ID.String()
	rec = ts.do(t, http.MethodPost, clientPath+"/domains", owner.ID, gin.H{"domain": "client-two.example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[customdomaindomain.DomainResponse](t, rec)
	assert.Equal(t, customdomaindomain.StatusPending, created.Status)
	require.NotEmpty(t, created.VerificationToken)
	assert.Equal(t, "_whitelabel-challenge.client-two.example.com", created.RecordName)

	verifyPath := "/domains/" + created.ID.String() + "/verify"
	rec = ts.do(t, http.MethodPost, verifyPath, owner.ID, gin.H{"dns_record_value": "wrong-token"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "verification_failed", payload.Type)
	assert.Equal(t, "DNS record value does not match verification token", payload.Message)

	rec = ts.do(t, http.MethodGet, clientPath+"/domains", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[[]customdomaindomain.DomainResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, customdomaindomain.StatusPending, listed[0].Status)
	assert.NotNil(t, listed[0].LastVerificationAttempt)

	rec = ts.do(t, http.MethodPost, verifyPath, owner.ID, gin.H{"dns_record_value": created.VerificationToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verified := decodeData[customdomaindomain.DomainResponse](t, rec)
	assert.Equal(t, customdomaindomain.StatusActive, verified.Status)
	require.NotNil(t, verified.CertificatePEM)
	assert.True(t, strings.HasPrefix(*verified.CertificatePEM, "-----BEGIN CERTIFICATE-----"))

	rec = ts.do(t, http.MethodPut, agencyPath+"/branding", owner.ID, gin.H{
		"logo_url":        "https://acme.test/logo.png",
		"primary_color":   "#111111",
		"secondary_color": "#222222",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPut, clientPath+"/branding", owner.ID, gin.H{
		"primary_color": "#ff0000",
		"logo_url":      "https://client-two.test/logo.png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/branding/by-domain/client-two.example.com", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolved := decodeData[brandingdomain.Branding](t, rec)
	assert.Equal(t, "domain:client-two.example.com", resolved.Scope)
	require.NotNil(t, resolved.SecondaryColor)
	assert.Equal(t, "#222222", *resolved.SecondaryColor)
	require.NotNil(t, resolved.PrimaryColor)
	assert.Equal(t, "#ff0000", *resolved.PrimaryColor)
	require.NotNil(t, resolved.LogoURL)
	assert.Equal(t, "https://client-two.test/logo.png", *resolved.LogoURL)

	rec = ts.do(t, http.MethodGet, "/branding/by-client/"+agency.DefaultClientID.String(), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	clientOne := decodeData[brandingdomain.Branding](t, rec)
	require.NotNil(t, clientOne.PrimaryColor)
	assert.Equal(t, "#111111", *clientOne.PrimaryColor)

	rec = ts.do(t, http.MethodGet, "/branding/by-domain/unknown.example.com", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrandingNullClearsField(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")
	agency := ts.createAgency(t, owner.ID, "agency")
	clientPath := "/clients/" + agency.DefaultClientID.String()

	rec := ts.do(t, http.MethodPut, "/agencies/"+agency.ID.String()+"/branding", owner.ID, gin.H{"primary_color": "#111111"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPut, clientPath+"/branding", owner.ID, gin.H{
		"primary_color": "#ff0000",
		"accent_color":  "#00ff00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPut, clientPath+"/branding", owner.ID, gin.H{"primary_color": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[brandingdomain.Branding](t, rec)
	assert.Nil(t, updated.PrimaryColor)
	require.NotNil(t, updated.AccentColor)
	assert.Equal(t, "#00ff00", *updated.AccentColor)

	rec = ts.do(t, http.MethodGet, "/branding/by-client/"+agency.DefaultClientID.String(), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resolved := decodeData[brandingdomain.Branding](t, rec)
	require.NotNil(t, resolved.PrimaryColor)
	assert.Equal(t, "#111111", *resolved.PrimaryColor)

	rec = ts.do(t, http.MethodPut, clientPath+"/branding", owner.ID, gin.H{"accent_color": 42})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBasicTierIsGated(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@basic.test")
	agency := ts.createAgency(t, owner.ID, "basic")
	agencyPath := "/agencies/" + agency.ID.String()

	rec := ts.do(t, http.MethodPost, agencyPath+"/clients", owner.ID, gin.H{"name": "Client Two"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "tier_restricted", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodPost, "/clients/"+agency.DefaultClientID.String()+"/domains", owner.ID, gin.H{"domain": "basic.example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, agencyPath+"/invitations", owner.ID, gin.H{"email": "someone@basic.test", "role": "analyst"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, agencyPath+"/clients", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]tenancydomain.Client](t, rec), 1)
}

func TestInvitationAndClientSwitch(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")
	agency := ts.createAgency(t, owner.ID, "agency")
	clientTwo := ts.createClient(t, owner.ID, agency.ID, "Client Two")
	agencyPath := "/agencies/" + agency.ID.String()

	rec := ts.do(t, http.MethodPost, agencyPath+"/invitations", owner.ID, gin.H{
		"email":     "analyst@acme.test",
		"role":      "analyst",
		"client_id": clientTwo.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invitation := decodeData[invitationdomain.Invitation](t, rec)
	assert.Equal(t, invitationdomain.StatusPending, invitation.Status)
	assert.True(t, testkit.Epoch.Add(config.DefaultInvitationTTL).Equal(invitation.ExpiresAt))

	analyst := ts.register(t, "analyst@acme.test")
	acceptPath := "/invitations/" + invitation.Token + "/accept"

	rec = ts.do(t, http.MethodGet, agencyPath, analyst.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, acceptPath, analyst.ID, gin.H{"email": "other@acme.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_mismatch", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodPost, acceptPath, analyst.ID, gin.H{"email": "Analyst@Acme.test"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	membership := decodeData[tenancydomain.Membership](t, rec)
	assert.Equal(t, tenancydomain.RoleAnalyst, membership.Role)
	require.NotNil(t, membership.CurrentClientID)
	assert.Equal(t, clientTwo.ID, *membership.CurrentClientID)

	rec = ts.do(t, http.MethodPost, acceptPath, analyst.ID, gin.H{"email": "analyst@acme.test"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, agencyPath+"/switch-client", analyst.ID, gin.H{"client_id": agency.DefaultClientID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, agencyPath+"/context", analyst.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ctxResp := decodeData[tenancydomain.ContextResponse](t, rec)
	assert.Equal(t, tenancydomain.RoleAnalyst, ctxResp.Role)
	require.NotNil(t, ctxResp.CurrentClientID)
	assert.Equal(t, agency.DefaultClientID, *ctxResp.CurrentClientID)

	rec = ts.do(t, http.MethodPost, agencyPath+"/invitations", analyst.ID, gin.H{"email": "x@acme.test", "role": "analyst"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient role", decodeError(t, rec).Message)

	rec = ts.do(t, http.MethodGet, agencyPath+"/invitations", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[[]invitationdomain.Invitation](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, invitationdomain.StatusAccepted, listed[0].Status)
}

func TestRevokeInvitation(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")
	agency := ts.createAgency(t, owner.ID, "agency")
	agencyPath := "/agencies/" + agency.ID.String()

	rec := ts.do(t, http.MethodPost, agencyPath+"/invitations", owner.ID, gin.H{"email": "late@acme.test", "role": "manager"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invitation := decodeData[invitationdomain.Invitation](t, rec)

	revokePath := agencyPath + "/invitations/" + invitation.ID.String() + "/revoke"
	rec = ts.do(t, http.MethodPost, revokePath, owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, invitationdomain.StatusRevoked, decodeData[invitationdomain.Invitation](t, rec).Status)

	rec = ts.do(t, http.MethodPost, revokePath, owner.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	late := ts.register(t, "late@acme.test")
	rec = ts.do(t, http.MethodPost, "/invitations/"+invitation.Token+"/accept", late.ID, gin.H{"email": "late@acme.test"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExpiredInvitation(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")
	agency := ts.createAgency(t, owner.ID, "agency")

	rec := ts.do(t, http.MethodPost, "/agencies/"+agency.ID.String()+"/invitations", owner.ID, gin.H{"email": "slow@acme.test", "role": "analyst"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invitation := decodeData[invitationdomain.Invitation](t, rec)

	slow := ts.register(t, "slow@acme.test")
	ts.env.Clock.Advance(config.DefaultInvitationTTL)

	rec = ts.do(t, http.MethodPost, "/invitations/"+invitation.Token+"/accept", slow.ID, gin.H{"email": "slow@acme.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "expired", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodPost, "/invitations/"+invitation.Token+"/accept", slow.ID, gin.H{"email": "slow@acme.test"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvalidPathID(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := ts.register(t, "owner@acme.test")

	rec := ts.do(t, http.MethodGet, "/agencies/not-a-number", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, paramAgencyID, payload.Errors[0].Field)

	rec = ts.do(t, http.MethodGet, "/agencies/"+ts.env.Node.Generate().String(), owner.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBrandingLookupRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewLocalBucket(), 0.01, 1, zaptest.NewLogger(t))
	ts := newTestServer(t, limiter)

	rec := ts.do(t, http.MethodGet, "/branding/by-domain/nothing.example.com", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = ts.do(t, http.MethodGet, "/branding/by-domain/nothing.example.com", 0, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rec).Type)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
