package http

import (
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	userRepo        user.Repository
	preferencesRepo user.PreferencesRepository
	workspaceRepo   workspace.Repository
	memberRepo      workspace.MemberRepository
	invitationRepo  workspace.InvitationRepository
	groupRepo       permission.GroupRepository
	credentialRepo  credential.Repository
	logRepo         credential.LogRepository
	usageRepo       credential.UsageRepository
	workflowRepo    workflow.Repository
}
