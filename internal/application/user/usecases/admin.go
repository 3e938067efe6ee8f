package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type ListUsersQuery struct {
	Page     int
	PageSize int
	Role     string
	Tier     string
	Status   string
	Search   string
}

type ListUsersResult struct {
	Users    []*user.User
	Total    int64
	Page     int
	PageSize int
}

type ListUsersUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewListUsersUseCase(userRepo user.Repository, logger logger.Interface) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo, logger: logger}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) (*ListUsersResult, error) {
	p := utils.ValidatePagination(query.Page, query.PageSize)
	users, total, err := uc.userRepo.List(ctx, user.ListFilter{
		Page:     p.Page,
		PageSize: p.PageSize,
		Role:     query.Role,
		Tier:     query.Tier,
		Status:   query.Status,
		Search:   query.Search,
	})
	if err != nil {
		uc.logger.Errorw("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &ListUsersResult{Users: users, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

type UpdateUserAccessCommand struct {
	ActorID   uint
	TargetSID string
	Role      *string
	Tier      *string
	Status    *string
}

type UpdateUserAccessUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewUpdateUserAccessUseCase(userRepo user.Repository, logger logger.Interface) *UpdateUserAccessUseCase {
	return &UpdateUserAccessUseCase{userRepo: userRepo, logger: logger}
}

func (uc *UpdateUserAccessUseCase) Execute(ctx context.Context, cmd UpdateUserAccessCommand) (*user.User, error) {
	target, err := uc.userRepo.GetBySID(ctx, cmd.TargetSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, mapUserError(user.ErrUserNotFound)
	}

	if target.ID() == cmd.ActorID {
		demoted := cmd.Role != nil && *cmd.Role != string(authorization.RoleAdmin)
		disabled := cmd.Status != nil && *cmd.Status != string(user.StatusActive)
		if demoted || disabled {
			return nil, mapUserError(user.ErrCannotModifySelf)
		}
	}

	before := target.Version()
	if cmd.Role != nil {
		role := authorization.UserRole(*cmd.Role)
		if !role.IsValid() {
			return nil, apperrors.NewValidationError("invalid role", *cmd.Role)
		}
		if err := target.ChangeRole(role); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Tier != nil {
		if err := target.ChangeTier(user.SubscriptionTier(*cmd.Tier)); err != nil {
			return nil, mapUserError(err)
		}
	}
	if cmd.Status != nil {
		if err := target.ChangeStatus(user.Status(*cmd.Status)); err != nil {
			return nil, mapUserError(err)
		}
	}
	if target.Version() == before {
		return target, nil
	}

	if err := uc.userRepo.Update(ctx, target); err != nil {
		uc.logger.Errorw("failed to update user access", "user_sid", cmd.TargetSID, "error", err)
		return nil, err
	}
	uc.logger.Infow("user access updated",
		"user_sid", target.SID(),
		"actor_id", cmd.ActorID,
		"role", target.Role(),
		"tier", target.Tier(),
		"status", target.Status(),
	)
	return target, nil
}
