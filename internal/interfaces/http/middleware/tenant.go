package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/infrastructure/logger"
	"github.com/microfinance/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Identity context keys and headers
const (
	TenantIDKey     = "tenant_id"
	UserIDKey       = "user_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// HeaderIdentityConfig holds configuration for header based identification
type HeaderIdentityConfig struct {
	// SkipPaths are paths that don't require a tenant
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultHeaderIdentityConfig returns the default header identity configuration
func DefaultHeaderIdentityConfig() HeaderIdentityConfig {
	return HeaderIdentityConfig{
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// HeaderIdentity identifies tenant and acting user from the X-Tenant-ID and
// X-User-ID headers. It is used when JWT authentication is disabled, for
// local runs and deployments behind an authenticating gateway. The tenant
// header is required; a missing user header leaves the nil UUID as actor.
func HeaderIdentity(cfg HeaderIdentityConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, nil) {
			c.Next()
			return
		}

		rawTenant := c.GetHeader(TenantHeaderKey)
		if rawTenant == "" {
			respondUnauthorized(c, dto.ErrCodeTenantMissing, "Tenant identification required")
			return
		}
		tenantID, err := uuid.Parse(rawTenant)
		if err != nil {
			respondUnauthorized(c, dto.ErrCodeTenantMissing, "Invalid tenant ID format")
			return
		}

		userID := uuid.Nil
		if rawUser := c.GetHeader(UserHeaderKey); rawUser != "" {
			if userID, err = uuid.Parse(rawUser); err != nil {
				respondUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid user ID format")
				return
			}
		}

		setIdentity(c, tenantID, userID)
		cfg.Logger.Debug("Identity taken from headers",
			zap.String("tenant_id", tenantID.String()),
			zap.String("user_id", userID.String()))
		c.Next()
	}
}

func respondUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}

// GetTenantID returns the tenant stored by the identity middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return uuidValue(c, TenantIDKey)
}

// GetUserID returns the acting user stored by the identity middleware
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidValue(c, UserIDKey)
}

func uuidValue(c *gin.Context, key string) (uuid.UUID, bool) {
	if v, exists := c.Get(key); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
