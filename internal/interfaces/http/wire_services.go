package http

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	credentialUsecases "github.com/connecthub/connecthub/internal/application/credential/usecases"
	"github.com/connecthub/connecthub/internal/application/dashboard"
	permissionApp "github.com/connecthub/connecthub/internal/application/permission"
	platformApp "github.com/connecthub/connecthub/internal/application/platform"
	"github.com/connecthub/connecthub/internal/application/user/usecases"
	workflowUsecases "github.com/connecthub/connecthub/internal/application/workflow/usecases"
	"github.com/connecthub/connecthub/internal/application/workspace/access"
	workspaceUsecases "github.com/connecthub/connecthub/internal/application/workspace/usecases"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/infrastructure/cache"
	"github.com/connecthub/connecthub/internal/infrastructure/config"
	"github.com/connecthub/connecthub/internal/infrastructure/email"
	"github.com/connecthub/connecthub/internal/infrastructure/encryption"
	"github.com/connecthub/connecthub/internal/infrastructure/integrations"
	"github.com/connecthub/connecthub/internal/infrastructure/oauth"
	permissionInfra "github.com/connecthub/connecthub/internal/infrastructure/permission"
	"github.com/connecthub/connecthub/internal/infrastructure/pubsub"
	"github.com/connecthub/connecthub/internal/infrastructure/ratelimit"
	"github.com/connecthub/connecthub/internal/infrastructure/repository"
	"github.com/connecthub/connecthub/internal/infrastructure/scheduler"
	"github.com/connecthub/connecthub/internal/infrastructure/token"
	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
	"github.com/connecthub/connecthub/internal/interfaces/http/validation"
	sharedDB "github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/goroutine"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/services/markdown"
)

const (
	eventBufferSize     = 256
	oauthStateKeyPrefix = "connecthub:oauth:state:"
	authRateLimitScope  = "auth"
)

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Security Services
// ============================================================

// initInfrastructure connects Redis, builds the repositories and the
// services every later section depends on.
func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if c.redis == nil {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
	}

	box, err := encryption.NewSecretBox(cfg.Credentials.EncryptionKey)
	if err != nil {
		return fmt.Errorf("invalid credentials.encryption_key: %w", err)
	}
	c.secretBox = box

	c.txManager = sharedDB.NewTransactionManager(c.db)
	c.repos = newRepositories(c.db, box, log)

	enforcer, err := permissionInfra.NewEnforcer(c.db, permissionInfra.DefaultCacheConfig, log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.SyncBaseline(); err != nil {
		return fmt.Errorf("failed to sync role baseline: %w", err)
	}
	c.enforcer = enforcer

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.RefreshExpDays)
	c.jwtService = &jwtServiceAdapter{c.jwtSvc}
	c.hasher = auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	c.tokens = token.NewGenerator()
	c.markdown = markdown.NewRenderer()

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.repos.userRepo, log)
	if cfg.Auth.RateLimit.Enabled {
		window := time.Duration(cfg.Auth.RateLimit.WindowSeconds) * time.Second
		limiter := ratelimit.NewRedisRateLimiter(c.redis, cfg.Auth.RateLimit.Requests, window)
		c.authRateLimiter = middleware.NewRateLimiter(limiter, authRateLimitScope, log)
	}

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, box *encryption.SecretBox, log logger.Interface) *repositories {
	return &repositories{
		userRepo:        repository.NewUserRepository(db, log),
		preferencesRepo: repository.NewUserPreferencesRepository(db, log),
		workspaceRepo:   repository.NewWorkspaceRepository(db, log),
		memberRepo:      repository.NewWorkspaceMemberRepository(db, log),
		invitationRepo:  repository.NewInvitationRepository(db, log),
		groupRepo:       repository.NewPermissionGroupRepository(db, log),
		credentialRepo:  repository.NewCredentialRepository(db, box, log),
		logRepo:         repository.NewIntegrationLogRepository(db, log),
		usageRepo:       repository.NewUsageStatRepository(db, log),
		workflowRepo:    repository.NewWorkflowRepository(db, log),
	}
}

// ============================================================
// Section 2: Integrations - Platform Catalog, OAuth, Mail, Events
// ============================================================

func (c *Container) initIntegrations() error {
	cfg := c.cfg
	log := c.log

	registry, err := integrations.BuildRegistry(cfg.Platforms, log)
	if err != nil {
		return fmt.Errorf("failed to build platform registry: %w", err)
	}
	c.registry = registry

	if err := validation.Register(registry); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	c.oauthClient = oauth.NewPlatformClient(cfg.Server.GetBaseURL(), nil, log)
	c.stateStore = cache.NewRedisStateStore(c.redis, oauthStateKeyPrefix, cfg.Credentials.OAuthStateTTL())

	if cfg.Email.SMTPHost != "" {
		c.mailer = email.NewSMTPEmailService(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			AppURL:      frontendURL(cfg),
		})
	} else {
		log.Warnw("SMTP not configured, invitation emails are disabled")
	}

	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, log)
	if err := credentialUsecases.NewActivityLogSubscriber(c.repos.logRepo, log).Register(c.dispatcher); err != nil {
		return fmt.Errorf("failed to register activity log subscriber: %w", err)
	}
	if err := c.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	return nil
}

// frontendURL is the dashboard origin used in mail links: the first explicit
// allowed origin, falling back to the API base URL.
func frontendURL(cfg *config.Config) string {
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" && origin != "*" {
			return origin
		}
	}
	return cfg.Server.GetBaseURL()
}

// ============================================================
// Section 3: Use Cases
// ============================================================

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos
	ucs := &allUseCases{}
	c.ucs = ucs

	// User / Auth
	ucs.registerUC = usecases.NewRegisterUseCase(repos.userRepo, c.hasher, c.jwtService, log)
	ucs.loginUC = usecases.NewLoginUseCase(repos.userRepo, c.hasher, c.jwtService, log)
	ucs.refreshTokenUC = usecases.NewRefreshTokenUseCase(repos.userRepo, c.jwtService, log)
	ucs.getProfileUC = usecases.NewGetProfileUseCase(repos.userRepo, log)
	ucs.updateProfileUC = usecases.NewUpdateProfileUseCase(repos.userRepo, log)
	ucs.getPreferencesUC = usecases.NewGetPreferencesUseCase(repos.preferencesRepo, log)
	ucs.updatePreferencesUC = usecases.NewUpdatePreferencesUseCase(repos.preferencesRepo, repos.workspaceRepo, repos.memberRepo, log)
	ucs.listUsersUC = usecases.NewListUsersUseCase(repos.userRepo, log)
	ucs.updateUserAccessUC = usecases.NewUpdateUserAccessUseCase(repos.userRepo, log)

	// Credentials & integration activity
	ucs.saveCredentialUC = credentialUsecases.NewSaveCredentialUseCase(c.registry, repos.credentialRepo, c.dispatcher, log)
	ucs.listCredentialsUC = credentialUsecases.NewListCredentialsUseCase(repos.credentialRepo, log)
	ucs.getCredentialUC = credentialUsecases.NewGetCredentialUseCase(repos.credentialRepo)
	ucs.deleteCredentialUC = credentialUsecases.NewDeleteCredentialUseCase(repos.credentialRepo, c.dispatcher, log)
	ucs.refreshCredentialUC = credentialUsecases.NewRefreshCredentialUseCase(c.registry, c.oauthClient, repos.credentialRepo, repos.logRepo, c.dispatcher, log)
	ucs.recordUsageUC = credentialUsecases.NewRecordUsageUseCase(repos.credentialRepo, repos.usageRepo, repos.logRepo, log)
	ucs.initiateOAuthUC = credentialUsecases.NewInitiateOAuthUseCase(c.registry, c.oauthClient, c.stateStore, log)
	ucs.oauthCallbackUC = credentialUsecases.NewHandleOAuthCallbackUseCase(
		c.registry, c.oauthClient, c.stateStore, repos.userRepo, repos.credentialRepo, repos.logRepo,
		c.dispatcher, cfg.Server.FrontendCallbackURL, log,
	)
	ucs.listLogsUC = credentialUsecases.NewListLogsUseCase(repos.logRepo, log)
	ucs.logActivityUC = credentialUsecases.NewLogActivityUseCase(repos.credentialRepo, repos.logRepo, log)
	ucs.usageStatsUC = credentialUsecases.NewGetUsageStatsUseCase(repos.usageRepo, log)

	// Workspace access
	ucs.resolver = access.NewResolver(repos.workspaceRepo, repos.memberRepo)
	ucs.guard = access.NewGuard(ucs.resolver, c.enforcer)
	ucs.grants = access.NewGrantSyncer(repos.userRepo, repos.groupRepo, c.enforcer, log)

	// Workspaces, members & invitations
	ucs.createWorkspaceUC = workspaceUsecases.NewCreateWorkspaceUseCase(c.txManager, repos.workspaceRepo, repos.memberRepo, c.enforcer, log)
	ucs.listWorkspacesUC = workspaceUsecases.NewListWorkspacesUseCase(repos.workspaceRepo, repos.memberRepo, log)
	ucs.getWorkspaceUC = workspaceUsecases.NewGetWorkspaceUseCase(ucs.resolver)
	ucs.updateWorkspaceUC = workspaceUsecases.NewUpdateWorkspaceUseCase(ucs.guard, repos.workspaceRepo, log)
	ucs.deleteWorkspaceUC = workspaceUsecases.NewDeleteWorkspaceUseCase(
		c.txManager, ucs.resolver, repos.workspaceRepo, repos.memberRepo, repos.invitationRepo,
		repos.groupRepo, repos.workflowRepo, c.enforcer, log,
	)
	ucs.transferOwnerUC = workspaceUsecases.NewTransferOwnershipUseCase(c.txManager, ucs.resolver, repos.workspaceRepo, repos.memberRepo, ucs.grants, log)
	ucs.listMembersUC = workspaceUsecases.NewListMembersUseCase(ucs.resolver, repos.memberRepo, repos.userRepo, repos.groupRepo, log)
	ucs.updateMemberUC = workspaceUsecases.NewUpdateMemberUseCase(ucs.guard, repos.memberRepo, ucs.grants, log)
	ucs.removeMemberUC = workspaceUsecases.NewRemoveMemberUseCase(ucs.guard, repos.memberRepo, ucs.grants, log)
	ucs.inviteMemberUC = workspaceUsecases.NewInviteMemberUseCase(
		c.txManager, ucs.guard, repos.userRepo, repos.memberRepo, repos.invitationRepo,
		c.tokens, c.mailer, cfg.Workspace.InvitationTTL(), log,
	)
	ucs.listInvitationsUC = workspaceUsecases.NewListInvitationsUseCase(ucs.resolver, repos.invitationRepo)
	ucs.revokeInvitationUC = workspaceUsecases.NewRevokeInvitationUseCase(ucs.guard, repos.invitationRepo, log)
	ucs.acceptInvitationUC = workspaceUsecases.NewAcceptInvitationUseCase(
		c.txManager, repos.userRepo, repos.workspaceRepo, repos.memberRepo, repos.invitationRepo,
		c.tokens, ucs.grants, log,
	)

	// Workflows
	ucs.createWorkflowUC = workflowUsecases.NewCreateWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.getWorkflowUC = workflowUsecases.NewGetWorkflowUseCase(ucs.guard, repos.workflowRepo)
	ucs.listWorkflowsUC = workflowUsecases.NewListWorkflowsUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.updateWorkflowUC = workflowUsecases.NewUpdateWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.deleteWorkflowUC = workflowUsecases.NewDeleteWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.transitionWorkflowUC = workflowUsecases.NewTransitionWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.testRunWorkflowUC = workflowUsecases.NewTestRunWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.exportWorkflowUC = workflowUsecases.NewExportWorkflowUseCase(ucs.guard, repos.workflowRepo, log)
	ucs.importWorkflowUC = workflowUsecases.NewImportWorkflowUseCase(ucs.guard, repos.workflowRepo, log)

	// Application services
	ucs.permissionService = permissionApp.NewService(
		c.txManager, ucs.resolver, repos.workspaceRepo, repos.memberRepo, repos.groupRepo,
		c.enforcer, ucs.grants, log,
	)
	ucs.platformService = platformApp.NewService(c.registry, repos.credentialRepo, log)
	ucs.dashboardService = dashboard.NewService(repos.credentialRepo, repos.logRepo, repos.workspaceRepo, repos.memberRepo, repos.workflowRepo, log)

	// Background jobs
	ucs.credentialExpiryJob = credentialUsecases.NewCredentialExpiryJob(c.registry, c.oauthClient, repos.credentialRepo, repos.logRepo, c.dispatcher, log)
	ucs.invitationExpiryJob = workspaceUsecases.NewInvitationExpiryJob(repos.invitationRepo)
}

// ============================================================
// Section 4: Handlers & Middlewares
// ============================================================

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	c.permissionMiddleware = middleware.NewPermissionMiddleware(ucs.guard, log)

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": c.pingDatabase,
			"redis": func(ctx context.Context) error {
				return c.redis.Ping(ctx).Err()
			},
		}, log),

		authHandler: handlers.NewAuthHandler(ucs.registerUC, ucs.loginUC, ucs.refreshTokenUC, ucs.getProfileUC, log),
		userHandler: handlers.NewUserHandler(
			ucs.getProfileUC, ucs.updateProfileUC, ucs.getPreferencesUC, ucs.updatePreferencesUC,
			ucs.listUsersUC, ucs.updateUserAccessUC, log,
		),
		dashboardHandler: handlers.NewDashboardHandler(ucs.dashboardService, log),

		platformHandler: handlers.NewPlatformHandler(ucs.platformService, ucs.deleteCredentialUC, log),
		credentialHandler: handlers.NewCredentialHandler(
			ucs.saveCredentialUC, ucs.listCredentialsUC, ucs.getCredentialUC, ucs.deleteCredentialUC,
			ucs.refreshCredentialUC, ucs.recordUsageUC, ucs.initiateOAuthUC, ucs.oauthCallbackUC, log,
		),
		integrationLogHandler: handlers.NewIntegrationLogHandler(ucs.listLogsUC, ucs.logActivityUC, ucs.usageStatsUC, log),

		workspaceHandler: handlers.NewWorkspaceHandler(handlers.WorkspaceUseCases{
			Create:            ucs.createWorkspaceUC,
			List:              ucs.listWorkspacesUC,
			Get:               ucs.getWorkspaceUC,
			Update:            ucs.updateWorkspaceUC,
			Delete:            ucs.deleteWorkspaceUC,
			TransferOwnership: ucs.transferOwnerUC,
			ListMembers:       ucs.listMembersUC,
			UpdateMember:      ucs.updateMemberUC,
			RemoveMember:      ucs.removeMemberUC,
			Invite:            ucs.inviteMemberUC,
			ListInvitations:   ucs.listInvitationsUC,
			RevokeInvitation:  ucs.revokeInvitationUC,
			AcceptInvitation:  ucs.acceptInvitationUC,
		}, log),
		permissionHandler: handlers.NewPermissionHandler(ucs.permissionService, log),
		workflowHandler: handlers.NewWorkflowHandler(handlers.WorkflowUseCases{
			Create:     ucs.createWorkflowUC,
			Get:        ucs.getWorkflowUC,
			List:       ucs.listWorkflowsUC,
			Update:     ucs.updateWorkflowUC,
			Delete:     ucs.deleteWorkflowUC,
			Transition: ucs.transitionWorkflowUC,
			TestRun:    ucs.testRunWorkflowUC,
			Export:     ucs.exportWorkflowUC,
			Import:     ucs.importWorkflowUC,
		}, c.markdown, log),
	}
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ============================================================
// Section 5: Background Services - Scheduler, Policy Event Bus
// ============================================================

func (c *Container) initBackgroundServices() error {
	log := c.log

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterCredentialExpiryJob(c.ucs.credentialExpiryJob, c.cfg.Credentials.ExpiryCheckInterval()); err != nil {
		return fmt.Errorf("failed to register credential expiry job: %w", err)
	}
	if err := schedulerManager.RegisterInvitationExpiryJob(c.ucs.invitationExpiryJob); err != nil {
		return fmt.Errorf("failed to register invitation expiry job: %w", err)
	}
	c.schedulerManager = schedulerManager

	// Other instances reload casbin rules when this one changes them.
	c.policyEventBus = pubsub.NewRedisPolicyEventBus(c.redis, log)
	c.enforcer.SetChangeNotifier(c.policyEventBus.Notifier())

	return nil
}

// StartBackgroundServices starts the scheduler and the policy event
// subscriber. It returns once the subscriber is listening.
func (c *Container) StartBackgroundServices(ctx context.Context) {
	c.schedulerManager.Start()

	c.policyEventBusCancelMu.Lock()
	subCtx, cancel := context.WithCancel(ctx)
	c.policyEventBusCancel = cancel
	c.policyEventBusCancelMu.Unlock()

	ready := make(chan struct{})
	goroutine.SafeGo(c.log, "policy-event-subscriber", func() {
		err := c.policyEventBus.Subscribe(subCtx, c.reloadPolicy, ready)
		logSubscriberExit(c.log, "policy event subscriber", err)
	})

	select {
	case <-ready:
	case <-subCtx.Done():
	case <-time.After(5 * time.Second):
		c.log.Warnw("policy event subscriber not ready, continuing startup")
	}
}

func (c *Container) reloadPolicy(_ context.Context, event pubsub.PolicyChangeEvent) {
	if err := c.enforcer.LoadPolicy(); err != nil {
		c.log.Errorw("failed to reload permission policy", "workspace_sid", event.WorkspaceSID, "error", err)
		return
	}
	c.log.Debugw("permission policy reloaded", "workspace_sid", event.WorkspaceSID, "source_instance", event.InstanceID)
}

// logSubscriberExit logs a subscriber exit at the appropriate level.
// Context cancellation during shutdown is logged at INFO.
func logSubscriberExit(log logger.Interface, name string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		log.Infow(name+" stopped", "reason", "context canceled")
		return
	}
	log.Errorw(name+" failed", "error", err)
}
