// Package models holds the GORM persistence models.
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&UserPreferenceModel{},
		&WorkspaceModel{},
		&WorkspaceMemberModel{},
		&WorkspaceInvitationModel{},
		&PermissionGroupModel{},
		&UserPermissionGroupModel{},
		&CredentialModel{},
		&IntegrationLogModel{},
		&PlatformUsageStatModel{},
		&WorkflowModel{},
	}
}
