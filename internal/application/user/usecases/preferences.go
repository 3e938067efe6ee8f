package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type GetPreferencesUseCase struct {
	prefsRepo user.PreferencesRepository
	logger    logger.Interface
}

func NewGetPreferencesUseCase(prefsRepo user.PreferencesRepository, logger logger.Interface) *GetPreferencesUseCase {
	return &GetPreferencesUseCase{prefsRepo: prefsRepo, logger: logger}
}

// Execute returns the stored preferences or the defaults.
func (uc *GetPreferencesUseCase) Execute(ctx context.Context, userID uint) (*user.Preferences, error) {
	prefs, err := uc.prefsRepo.Get(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to get preferences", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if prefs == nil {
		return user.DefaultPreferences(userID), nil
	}
	return prefs, nil
}

type UpdatePreferencesCommand struct {
	UserID uint
	Patch  user.PreferencesPatch
}

type UpdatePreferencesUseCase struct {
	prefsRepo     user.PreferencesRepository
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
	logger        logger.Interface
}

func NewUpdatePreferencesUseCase(
	prefsRepo user.PreferencesRepository,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	logger logger.Interface,
) *UpdatePreferencesUseCase {
	return &UpdatePreferencesUseCase{
		prefsRepo:     prefsRepo,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		logger:        logger,
	}
}

func (uc *UpdatePreferencesUseCase) Execute(ctx context.Context, cmd UpdatePreferencesCommand) (*user.Preferences, error) {
	if sid := cmd.Patch.DefaultWorkspaceSID; sid != nil && *sid != "" {
		if err := uc.checkWorkspace(ctx, cmd.UserID, *sid); err != nil {
			return nil, err
		}
	}

	prefs, err := uc.prefsRepo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if prefs == nil {
		prefs = user.DefaultPreferences(cmd.UserID)
	}
	if err := prefs.Apply(cmd.Patch); err != nil {
		return nil, mapUserError(err)
	}
	if err := uc.prefsRepo.Upsert(ctx, prefs); err != nil {
		uc.logger.Errorw("failed to save preferences", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return prefs, nil
}

// checkWorkspace requires the default workspace to be one the user belongs to.
func (uc *UpdatePreferencesUseCase) checkWorkspace(ctx context.Context, userID uint, sid string) error {
	ws, err := uc.workspaceRepo.GetBySID(ctx, sid)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return apperrors.NewValidationError("default workspace does not exist")
	}
	m, err := uc.memberRepo.GetByUser(ctx, ws.ID(), userID)
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil || !m.IsActive() {
		return apperrors.NewValidationError("default workspace must be one you are a member of")
	}
	return nil
}
