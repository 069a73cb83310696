package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/nalotext/smsmargin/internal/observability/context"
	"github.com/nalotext/smsmargin/internal/observability/logger"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"go.uber.org/zap"
)

const HeaderReseller = "X-Reseller-ID"

// ResellerRequired resolves the acting reseller from the request header and
// injects it into the request context. Authentication lives in the gateway
// in front of this service; the header is trusted here.
func (s *Server) ResellerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderReseller))
		if raw == "" {
			AbortWithError(c, ErrResellerRequired)
			return
		}

		resellerID, err := snowflake.ParseString(raw)
		if err != nil || resellerID == 0 {
			AbortWithError(c, ErrResellerRequired)
			return
		}

		ctx := resellerctx.WithResellerID(c.Request.Context(), resellerID)
		ctx = obscontext.WithResellerID(ctx, resellerID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BulkCalculateRateLimit applies the redis token bucket to the bulk pricing
// endpoint. Without redis the limiter is disabled and requests pass.
func (s *Server) BulkCalculateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.bulkLimiter == nil || !s.bulkLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
		if !ok || resellerID == 0 {
			AbortWithError(c, ErrResellerRequired)
			return
		}

		endpoint := c.FullPath()
		allowed, err := s.bulkLimiter.Allow(ctx, resellerID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("bulk calculate rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			logger.FromContext(ctx).Warn("bulk calculate rate limit exceeded",
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, "token-bucket")
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}
