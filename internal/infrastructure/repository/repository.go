// Package repository implements the domain repositories on GORM.
package repository

import (
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
)

var (
	_ user.Repository                = (*UserRepositoryImpl)(nil)
	_ user.PreferencesRepository     = (*UserPreferencesRepositoryImpl)(nil)
	_ workspace.Repository           = (*WorkspaceRepositoryImpl)(nil)
	_ workspace.MemberRepository     = (*WorkspaceMemberRepositoryImpl)(nil)
	_ workspace.InvitationRepository = (*InvitationRepositoryImpl)(nil)
	_ permission.GroupRepository     = (*PermissionGroupRepositoryImpl)(nil)
	_ credential.Repository          = (*CredentialRepositoryImpl)(nil)
	_ credential.LogRepository       = (*IntegrationLogRepositoryImpl)(nil)
	_ credential.UsageRepository     = (*UsageStatRepositoryImpl)(nil)
	_ workflow.Repository            = (*WorkflowRepositoryImpl)(nil)
)
