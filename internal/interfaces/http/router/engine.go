package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/microfinance/backend/internal/infrastructure/auth"
	"github.com/microfinance/backend/internal/infrastructure/config"
	"github.com/microfinance/backend/internal/infrastructure/logger"
	"github.com/microfinance/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options carries everything New needs to assemble the engine
type Options struct {
	Config         *config.Config
	Logger         *zap.Logger
	Handlers       Handlers
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
	// JWT validates bearer tokens when cfg.JWT.Enabled is set; otherwise
	// the tenant and user come from the X-Tenant-ID and X-User-ID headers.
	JWT         *auth.JWTService
	RateLimiter *middleware.RateLimiter
}

// New builds the gin engine. Middleware order: request id, logging,
// recovery, security headers, CORS, tracing, then on /api/v1 identity,
// span attributes, metrics and rate limiting.
func New(opts Options) (*gin.Engine, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Enabled:        opts.TracerProvider != nil,
		TracerProvider: opts.TracerProvider,
	}))

	if opts.Handlers.Health != nil {
		healthRoutes(engine, opts.Handlers.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(identityMiddleware(cfg, opts.JWT, log), middleware.SpanAttributes())
	if opts.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		r.Use(httpMetrics)
	}
	if cfg.HTTP.RateLimitEnabled && opts.RateLimiter != nil {
		r.Use(middleware.RateLimit(opts.RateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	limits := Limits{MaxBodySize: cfg.HTTP.MaxBodySize, MaxPageSize: cfg.Documents.MaxPageSize}
	r.Register(CustomerRoutes(opts.Handlers, limits), TaskRoutes(opts.Handlers, limits))
	r.Setup()

	return engine, nil
}

func identityMiddleware(cfg *config.Config, jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	if cfg.JWT.Enabled && jwtService != nil {
		jwtConfig := middleware.DefaultJWTConfig(jwtService)
		jwtConfig.Logger = log
		return middleware.JWTAuthMiddlewareWithConfig(jwtConfig)
	}
	identityConfig := middleware.DefaultHeaderIdentityConfig()
	identityConfig.Logger = log
	return middleware.HeaderIdentity(identityConfig)
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
