package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	workspaceUsecases "github.com/connecthub/connecthub/internal/application/workspace/usecases"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/infrastructure/cache"
	"github.com/connecthub/connecthub/internal/infrastructure/config"
	"github.com/connecthub/connecthub/internal/infrastructure/encryption"
	"github.com/connecthub/connecthub/internal/infrastructure/oauth"
	permissionInfra "github.com/connecthub/connecthub/internal/infrastructure/permission"
	"github.com/connecthub/connecthub/internal/infrastructure/pubsub"
	"github.com/connecthub/connecthub/internal/infrastructure/scheduler"
	"github.com/connecthub/connecthub/internal/infrastructure/token"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
	sharedDB "github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/services/markdown"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services, and wires them together.
type Container struct {
	// Core infrastructure
	engine    *gin.Engine
	db        *gorm.DB
	txManager *sharedDB.TransactionManager
	cfg       *config.Config
	log       logger.Interface
	redis     *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	authRateLimiter      *middleware.RateLimiter

	// Security services
	jwtSvc     *auth.JWTService
	jwtService *jwtServiceAdapter
	hasher     *auth.BcryptPasswordHasher
	secretBox  *encryption.SecretBox
	tokens     token.Generator
	enforcer   *permissionInfra.Enforcer

	// Integrations
	registry    *platform.Registry
	oauthClient *oauth.PlatformClient
	stateStore  *cache.RedisStateStore
	mailer      workspaceUsecases.InvitationMailer // nil when SMTP is not configured
	markdown    markdown.Renderer

	// Background services
	dispatcher       *events.InMemoryEventDispatcher
	schedulerManager *scheduler.SchedulerManager

	// Policy event bus for cross-instance permission cache invalidation
	policyEventBus         *pubsub.RedisPolicyEventBus
	policyEventBusCancel   context.CancelFunc
	policyEventBusCancelMu sync.Mutex
}

// NewContainer wires every component. A nil redisClient is created from the
// configuration.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Infrastructure - Redis, repositories, security services
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Integrations - platform catalog, OAuth, event dispatcher
	if err := c.initIntegrations(); err != nil {
		return nil, err
	}

	// Section 3: Use cases
	c.initUseCases()

	// Section 4: Handlers and middlewares
	c.initHandlers()

	// Section 5: Background services - scheduler, policy event bus
	if err := c.initBackgroundServices(); err != nil {
		return nil, err
	}

	return c, nil
}
