// Package testutil wires the real repositories and enforcer on an in-memory
// SQLite database for application-layer tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/encryption"
	"github.com/connecthub/connecthub/internal/infrastructure/permission"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/infrastructure/repository"
	"github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type Stack struct {
	DB          *gorm.DB
	Tx          *db.TransactionManager
	Log         logger.Interface
	Users       *repository.UserRepositoryImpl
	Preferences *repository.UserPreferencesRepositoryImpl
	Workspaces  *repository.WorkspaceRepositoryImpl
	Members     *repository.WorkspaceMemberRepositoryImpl
	Invitations *repository.InvitationRepositoryImpl
	Groups      *repository.PermissionGroupRepositoryImpl
	Credentials *repository.CredentialRepositoryImpl
	Logs        *repository.IntegrationLogRepositoryImpl
	Usage       *repository.UsageStatRepositoryImpl
	Workflows   *repository.WorkflowRepositoryImpl
	Enforcer    *permission.Enforcer
}

func NewStack(t *testing.T) *Stack {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	box, err := encryption.NewSecretBox(key)
	require.NoError(t, err)

	log := logger.NewNopLogger()
	enforcer, err := permission.NewEnforcer(gdb, permission.DefaultCacheConfig, log)
	require.NoError(t, err)

	return &Stack{
		DB:          gdb,
		Tx:          db.NewTransactionManager(gdb),
		Log:         log,
		Users:       repository.NewUserRepository(gdb, log),
		Preferences: repository.NewUserPreferencesRepository(gdb, log),
		Workspaces:  repository.NewWorkspaceRepository(gdb, log),
		Members:     repository.NewWorkspaceMemberRepository(gdb, log),
		Invitations: repository.NewInvitationRepository(gdb, log),
		Groups:      repository.NewPermissionGroupRepository(gdb, log),
		Credentials: repository.NewCredentialRepository(gdb, box, log),
		Logs:        repository.NewIntegrationLogRepository(gdb, log),
		Usage:       repository.NewUsageStatRepository(gdb, log),
		Workflows:   repository.NewWorkflowRepository(gdb, log),
		Enforcer:    enforcer,
	}
}

// CreateUser stores an active client account.
func (s *Stack) CreateUser(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, "", "hashed-password")
	require.NoError(t, err)
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

// CreateWorkspace stores a workspace owned by owner and grants the owner role.
func (s *Stack) CreateWorkspace(t *testing.T, owner *user.User, name string) *workspace.Workspace {
	t.Helper()
	ctx := context.Background()
	ws, err := workspace.NewWorkspace(name, owner.ID(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Workspaces.Create(ctx, ws))
	m, err := workspace.NewMember(ws.ID(), owner.ID(), workspace.RoleOwner)
	require.NoError(t, err)
	require.NoError(t, s.Members.Create(ctx, m))
	require.NoError(t, s.Enforcer.SetMemberRole(ctx, owner.SID(), ws.SID(), workspace.RoleOwner))
	return ws
}

// AddMember stores an active membership and grants the role.
func (s *Stack) AddMember(t *testing.T, ws *workspace.Workspace, u *user.User, role workspace.Role) *workspace.Member {
	t.Helper()
	ctx := context.Background()
	m, err := workspace.NewMember(ws.ID(), u.ID(), role)
	require.NoError(t, err)
	require.NoError(t, s.Members.Create(ctx, m))
	require.NoError(t, s.Enforcer.SetMemberRole(ctx, u.SID(), ws.SID(), role))
	return m
}

// SaveCredential stores a connected API-key credential.
func (s *Stack) SaveCredential(t *testing.T, u *user.User, platform string) *credential.Credential {
	t.Helper()
	c, err := credential.NewCredential(u.ID(), platform, credential.TypeAPIKey,
		credential.Secrets{APIKey: "sk_test_" + platform}, nil, nil, nil)
	require.NoError(t, err)
	stored, err := s.Credentials.Upsert(context.Background(), c)
	require.NoError(t, err)
	return stored
}
