package http

import (
	credentialUsecases "github.com/connecthub/connecthub/internal/application/credential/usecases"
	"github.com/connecthub/connecthub/internal/application/dashboard"
	permissionApp "github.com/connecthub/connecthub/internal/application/permission"
	platformApp "github.com/connecthub/connecthub/internal/application/platform"
	"github.com/connecthub/connecthub/internal/application/user/usecases"
	workflowUsecases "github.com/connecthub/connecthub/internal/application/workflow/usecases"
	"github.com/connecthub/connecthub/internal/application/workspace/access"
	workspaceUsecases "github.com/connecthub/connecthub/internal/application/workspace/usecases"
)

// allUseCases holds all use case and application service instances.
type allUseCases struct {
	// User / Auth
	registerUC          *usecases.RegisterUseCase
	loginUC             *usecases.LoginUseCase
	refreshTokenUC      *usecases.RefreshTokenUseCase
	getProfileUC        *usecases.GetProfileUseCase
	updateProfileUC     *usecases.UpdateProfileUseCase
	getPreferencesUC    *usecases.GetPreferencesUseCase
	updatePreferencesUC *usecases.UpdatePreferencesUseCase
	listUsersUC         *usecases.ListUsersUseCase
	updateUserAccessUC  *usecases.UpdateUserAccessUseCase

	// Credentials & integration activity
	saveCredentialUC    *credentialUsecases.SaveCredentialUseCase
	listCredentialsUC   *credentialUsecases.ListCredentialsUseCase
	getCredentialUC     *credentialUsecases.GetCredentialUseCase
	deleteCredentialUC  *credentialUsecases.DeleteCredentialUseCase
	refreshCredentialUC *credentialUsecases.RefreshCredentialUseCase
	recordUsageUC       *credentialUsecases.RecordUsageUseCase
	initiateOAuthUC     *credentialUsecases.InitiateOAuthUseCase
	oauthCallbackUC     *credentialUsecases.HandleOAuthCallbackUseCase
	listLogsUC          *credentialUsecases.ListLogsUseCase
	logActivityUC       *credentialUsecases.LogActivityUseCase
	usageStatsUC        *credentialUsecases.GetUsageStatsUseCase

	// Workspace access
	resolver *access.Resolver
	guard    *access.Guard
	grants   *access.GrantSyncer

	// Workspaces, members & invitations
	createWorkspaceUC  *workspaceUsecases.CreateWorkspaceUseCase
	listWorkspacesUC   *workspaceUsecases.ListWorkspacesUseCase
	getWorkspaceUC     *workspaceUsecases.GetWorkspaceUseCase
	updateWorkspaceUC  *workspaceUsecases.UpdateWorkspaceUseCase
	deleteWorkspaceUC  *workspaceUsecases.DeleteWorkspaceUseCase
	transferOwnerUC    *workspaceUsecases.TransferOwnershipUseCase
	listMembersUC      *workspaceUsecases.ListMembersUseCase
	updateMemberUC     *workspaceUsecases.UpdateMemberUseCase
	removeMemberUC     *workspaceUsecases.RemoveMemberUseCase
	inviteMemberUC     *workspaceUsecases.InviteMemberUseCase
	listInvitationsUC  *workspaceUsecases.ListInvitationsUseCase
	revokeInvitationUC *workspaceUsecases.RevokeInvitationUseCase
	acceptInvitationUC *workspaceUsecases.AcceptInvitationUseCase

	// Workflows
	createWorkflowUC     *workflowUsecases.CreateWorkflowUseCase
	getWorkflowUC        *workflowUsecases.GetWorkflowUseCase
	listWorkflowsUC      *workflowUsecases.ListWorkflowsUseCase
	updateWorkflowUC     *workflowUsecases.UpdateWorkflowUseCase
	deleteWorkflowUC     *workflowUsecases.DeleteWorkflowUseCase
	transitionWorkflowUC *workflowUsecases.TransitionWorkflowUseCase
	testRunWorkflowUC    *workflowUsecases.TestRunWorkflowUseCase
	exportWorkflowUC     *workflowUsecases.ExportWorkflowUseCase
	importWorkflowUC     *workflowUsecases.ImportWorkflowUseCase

	// Application services
	permissionService *permissionApp.Service
	platformService   *platformApp.Service
	dashboardService  *dashboard.Service

	// Background jobs
	credentialExpiryJob *credentialUsecases.CredentialExpiryJob
	invitationExpiryJob *workspaceUsecases.InvitationExpiryJob
}
