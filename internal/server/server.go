package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	"github.com/smallbiznis/whitelabel/internal/branding"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
	"github.com/smallbiznis/whitelabel/internal/config"
	"github.com/smallbiznis/whitelabel/internal/customdomain"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	"github.com/smallbiznis/whitelabel/internal/invitation"
	invitationdomain "github.com/smallbiznis/whitelabel/internal/invitation/domain"
	"github.com/smallbiznis/whitelabel/internal/observability"
	obsmiddleware "github.com/smallbiznis/whitelabel/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/whitelabel/internal/observability/metrics"
	obstracing "github.com/smallbiznis/whitelabel/internal/observability/tracing"
	"github.com/smallbiznis/whitelabel/internal/providers"
	"github.com/smallbiznis/whitelabel/internal/ratelimit"
	"github.com/smallbiznis/whitelabel/internal/tenancy"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	"github.com/smallbiznis/whitelabel/internal/user"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	providers.Module,
	user.Module,
	tenancy.Module,
	branding.Module,
	customdomain.Module,
	invitation.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

const (
	paramAgencyID     = "agencyId"
	paramClientID     = "clientId"
	paramDomainID     = "domainId"
	paramInvitationID = "invitationId"
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.UntracedPrefixes()...))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	userSvc       userdomain.Service
	tenancySvc    tenancydomain.Service
	brandingSvc   brandingdomain.Service
	domainSvc     customdomaindomain.Service
	invitationSvc invitationdomain.Service
	limiter       *ratelimit.Limiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	UserSvc       userdomain.Service
	TenancySvc    tenancydomain.Service
	BrandingSvc   brandingdomain.Service
	DomainSvc     customdomaindomain.Service
	InvitationSvc invitationdomain.Service
	Limiter       *ratelimit.Limiter  `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		userSvc:       p.UserSvc,
		tenancySvc:    p.TenancySvc,
		brandingSvc:   p.BrandingSvc,
		domainSvc:     p.DomainSvc,
		invitationSvc: p.InvitationSvc,
		limiter:       p.Limiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/users", s.RegisterUser)
	s.engine.GET("/branding/by-domain/:domain", s.BrandingLookupRateLimit(), s.GetBrandingByDomain)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("", s.AuthRequired())

	api.GET("/users/me", s.GetCurrentUser)

	// -------- Agencies --------
	api.POST("/agencies", s.CreateAgency)
	api.GET("/agencies/:agencyId", s.GetAgency)
	api.GET("/agencies/:agencyId/clients", s.ListClients)
	api.POST("/agencies/:agencyId/clients", s.CreateClient)
	api.GET("/agencies/:agencyId/context", s.GetContext)
	api.POST("/agencies/:agencyId/switch-client", s.SwitchClient)

	// -------- Branding --------
	api.PUT("/agencies/:agencyId/branding", s.UpdateAgencyBranding)
	api.GET("/agencies/:agencyId/branding", s.GetAgencyBranding)
	api.PUT("/clients/:clientId/branding", s.UpdateClientBranding)
	api.GET("/branding/by-client/:clientId", s.GetClientBranding)

	// -------- Domains --------
	api.POST("/clients/:clientId/domains", s.CreateDomain)
	api.GET("/clients/:clientId/domains", s.ListDomains)
	api.POST("/domains/:domainId/verify", s.VerifyDomain)

	// -------- Invitations --------
	api.POST("/agencies/:agencyId/invitations", s.IssueInvitation)
	api.GET("/agencies/:agencyId/invitations", s.ListInvitations)
	api.POST("/agencies/:agencyId/invitations/:invitationId/revoke", s.RevokeInvitation)
	api.POST("/invitations/:token/accept", s.AcceptInvitation)
}
