package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/encryption"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func TestGooseSchema_HasEveryModelColumn(t *testing.T) {
	db := setupTestDB(t)

	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))
		require.True(t, db.Migrator().HasTable(model), stmt.Schema.Table)
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			assert.True(t, db.Migrator().HasColumn(model, field.DBName), "%s.%s", stmt.Schema.Table, field.DBName)
		}
	}
}

func TestGooseSchema_RoundTripsEveryModel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	log := logger.NewNopLogger()

	users := NewUserRepository(db, log)
	prefs := NewUserPreferencesRepository(db, log)
	workspaces := NewWorkspaceRepository(db, log)
	members := NewWorkspaceMemberRepository(db, log)
	invitations := NewInvitationRepository(db, log)
	groups := NewPermissionGroupRepository(db, log)
	workflows := NewWorkflowRepository(db, log)
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	box, err := encryption.NewSecretBox(key)
	require.NoError(t, err)
	credentials := NewCredentialRepository(db, box, log)
	logs := NewIntegrationLogRepository(db, log)
	usage := NewUsageStatRepository(db, log)

	// users and preferences
	u, err := user.NewUser("ada@example.com", "Ada", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, u.ChangeTier(user.TierPro))
	require.NoError(t, users.Update(ctx, u))
	gotUser, err := users.GetBySID(ctx, u.SID())
	require.NoError(t, err)
	require.NotNil(t, gotUser)
	assert.Equal(t, u.ID(), gotUser.ID())
	assert.Equal(t, user.TierPro, gotUser.Tier())
	assert.Equal(t, 2, gotUser.Version())

	// workspaces, members and invitations
	ws, err := workspace.NewWorkspace("Growth", u.ID(), map[string]any{"color": "teal"})
	require.NoError(t, err)
	require.NoError(t, workspaces.Create(ctx, ws))
	gotWS, err := workspaces.GetBySID(ctx, ws.SID())
	require.NoError(t, err)
	require.NotNil(t, gotWS)
	assert.Equal(t, "teal", gotWS.Settings()["color"])

	m, err := workspace.NewMember(ws.ID(), u.ID(), workspace.RoleOwner)
	require.NoError(t, err)
	require.NoError(t, members.Create(ctx, m))
	gotMember, err := members.GetBySID(ctx, ws.ID(), m.SID())
	require.NoError(t, err)
	require.NotNil(t, gotMember)
	assert.Equal(t, workspace.RoleOwner, gotMember.Role())

	inv, err := workspace.NewInvitation(ws.ID(), "carol@example.com", workspace.RoleViewer, "hash-1", u.ID(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, invitations.Create(ctx, inv))
	gotInv, err := invitations.GetByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	require.NotNil(t, gotInv)
	assert.Equal(t, inv.SID(), gotInv.SID())
	assert.Equal(t, workspace.RoleViewer, gotInv.Role())

	require.NoError(t, prefs.Upsert(ctx, &user.Preferences{
		UserID: u.ID(), Theme: user.ThemeDark, Language: "de", Timezone: "Europe/Berlin",
		EmailNotifications: true, DefaultWorkspaceSID: ws.SID(), UpdatedAt: biztime.NowUTC(),
	}))
	gotPrefs, err := prefs.Get(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, gotPrefs)
	assert.Equal(t, user.ThemeDark, gotPrefs.Theme)
	assert.Equal(t, ws.SID(), gotPrefs.DefaultWorkspaceSID)

	// permission groups and the member link
	g, err := permission.NewGroup(ws.ID(), "Ops", "on call", []string{permission.LogsView, permission.WorkflowsPublish})
	require.NoError(t, err)
	require.NoError(t, groups.Create(ctx, g))
	gotGroup, err := groups.GetBySID(ctx, ws.ID(), g.SID())
	require.NoError(t, err)
	require.NotNil(t, gotGroup)
	assert.ElementsMatch(t, []string{permission.LogsView, permission.WorkflowsPublish}, gotGroup.Permissions())

	gid := g.ID()
	require.NoError(t, groups.SetMemberGroup(ctx, m.ID(), &gid))
	linked, err := members.ListByGroup(ctx, g.ID())
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, m.SID(), linked[0].SID())
	var link models.UserPermissionGroupModel
	require.NoError(t, db.First(&link, "member_id = ?", m.ID()).Error)
	assert.Equal(t, g.ID(), link.GroupID)

	// credentials, logs and usage
	exp := biztime.NowUTC().Add(time.Hour).Truncate(time.Second)
	c, err := credential.NewCredential(u.ID(), "slack", credential.TypeOAuth2,
		credential.Secrets{AccessToken: "xoxp-1", RefreshToken: "r-1"}, []string{"chat:write"}, &exp, map[string]any{"team": "T1"})
	require.NoError(t, err)
	saved, err := credentials.Upsert(ctx, c)
	require.NoError(t, err)
	require.NoError(t, credentials.RecordUsage(ctx, saved, true, ""))
	gotCred, err := credentials.GetBySID(ctx, u.ID(), saved.SID())
	require.NoError(t, err)
	require.NotNil(t, gotCred)
	assert.Equal(t, "xoxp-1", gotCred.Secrets().AccessToken)
	assert.Equal(t, []string{"chat:write"}, gotCred.Scopes())
	assert.Equal(t, "T1", gotCred.Metadata()["team"])
	require.NotNil(t, gotCred.TokenExpiresAt())
	assert.True(t, exp.Equal(*gotCred.TokenExpiresAt()))
	assert.Equal(t, int64(1), gotCred.UsageCount())

	entry, err := credential.NewIntegrationLog(u.ID(), "slack", saved.SID(), credential.ActionAPICall, credential.LogLevelWarning, "slow", map[string]any{"ms": 900})
	require.NoError(t, err)
	require.NoError(t, logs.Create(ctx, entry))
	gotLogs, total, err := logs.List(ctx, credential.LogFilter{UserID: u.ID()})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, saved.SID(), gotLogs[0].CredentialSID)
	assert.Equal(t, credential.LogLevelWarning, gotLogs[0].Level)
	assert.EqualValues(t, 900, gotLogs[0].Details["ms"])

	day := biztime.StartOfDayUTC(biztime.NowUTC())
	require.NoError(t, usage.Increment(ctx, u.ID(), "slack", day, 1, 0))
	require.NoError(t, usage.Increment(ctx, u.ID(), "slack", day, 2, 1))
	stats, err := usage.List(ctx, u.ID(), "slack", day)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].APICalls)
	assert.Equal(t, int64(1), stats[0].Errors)

	// workflows
	w, err := workflow.NewWorkflow(ws.ID(), u.ID(), "Deal alert", "notify sales", sampleGraph())
	require.NoError(t, err)
	require.NoError(t, workflows.Create(ctx, w))
	require.NoError(t, w.Publish())
	require.NoError(t, workflows.Update(ctx, w))
	gotWF, err := workflows.GetBySID(ctx, ws.ID(), w.SID())
	require.NoError(t, err)
	require.NotNil(t, gotWF)
	assert.Equal(t, workflow.StatusPublished, gotWF.Status())
	assert.NotNil(t, gotWF.PublishedAt())
	assert.Len(t, gotWF.Graph().Nodes, 2)
	assert.Equal(t, 2, gotWF.Version())
}
