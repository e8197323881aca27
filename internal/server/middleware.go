package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/whitelabel/internal/observability/context"
	"github.com/smallbiznis/whitelabel/internal/observability/logger"
	"github.com/smallbiznis/whitelabel/internal/ratelimit"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-Id"
	contextUserKey = "user"

	endpointBrandingByDomain = "branding_by_domain"
)

// AuthRequired resolves the caller from the X-User-Id header.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.userSvc.Authenticate(c.Request.Context(), c.GetHeader(HeaderUserID))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		ctx := obscontext.WithUserID(c.Request.Context(), user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BrandingLookupRateLimit throttles the public by-domain lookup per client IP.
func (s *Server) BrandingLookupRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res := s.limiter.Allow(ctx, c.ClientIP())
		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		}
		if res.Allowed {
			c.Next()
			return
		}

		logger.FromContext(ctx).Warn("branding lookup rate limit exceeded",
			zap.String("client_ip", c.ClientIP()),
		)
		s.obsMetrics.RecordRateLimited(endpointBrandingByDomain)

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(res)))
		AbortWithError(c, ErrRateLimited)
	}
}

func retryAfterSeconds(res *ratelimit.Result) int {
	seconds := int(math.Ceil(res.RetryAfter.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func currentUser(c *gin.Context) *userdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*userdomain.User)
	return user
}

func currentUserID(c *gin.Context) snowflake.ID {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// pathID parses a snowflake path parameter. Agency ids are also attached to
// the request context for logging.
func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || id <= 0 {
		return 0, newValidationError(name, "invalid_id", "invalid "+name)
	}
	if name == paramAgencyID {
		ctx := obscontext.WithAgencyID(c.Request.Context(), id.String())
		c.Request = c.Request.WithContext(ctx)
	}
	return id, nil
}

func parseOptionalID(field, raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return nil, newValidationError(field, "invalid_id", "invalid "+field)
	}
	return &id, nil
}
