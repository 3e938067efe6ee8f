package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/user/dto"
	"github.com/connecthub/connecthub/internal/application/user/usecases"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// UserHandler serves the caller's profile and preferences and the platform
// admin user list.
type UserHandler struct {
	getProfileUseCase        getProfileUseCase
	updateProfileUseCase     updateProfileUseCase
	getPreferencesUseCase    getPreferencesUseCase
	updatePreferencesUseCase updatePreferencesUseCase
	listUsersUseCase         listUsersUseCase
	updateUserAccessUseCase  updateUserAccessUseCase
	logger                   logger.Interface
}

func NewUserHandler(
	getProfileUC getProfileUseCase,
	updateProfileUC updateProfileUseCase,
	getPreferencesUC getPreferencesUseCase,
	updatePreferencesUC updatePreferencesUseCase,
	listUsersUC listUsersUseCase,
	updateUserAccessUC updateUserAccessUseCase,
	logger logger.Interface,
) *UserHandler {
	return &UserHandler{
		getProfileUseCase:        getProfileUC,
		updateProfileUseCase:     updateProfileUC,
		getPreferencesUseCase:    getPreferencesUC,
		updatePreferencesUseCase: updatePreferencesUC,
		listUsersUseCase:         listUsersUC,
		updateUserAccessUseCase:  updateUserAccessUC,
		logger:                   logger,
	}
}

// GetProfile handles GET /users/me
// @Summary Get profile
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.UserResponse}
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	u, err := h.getProfileUseCase.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToUserResponse(u))
}

// UpdateProfile handles PATCH /users/me
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} utils.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.updateProfileUseCase.Execute(c.Request.Context(), usecases.UpdateProfileCommand{
		UserID:      actor.ID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "profile updated", dto.ToUserResponse(u))
}

// GetPreferences handles GET /users/me/preferences
// @Summary Get preferences
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.PreferencesResponse}
// @Router /users/me/preferences [get]
func (h *UserHandler) GetPreferences(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	prefs, err := h.getPreferencesUseCase.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToPreferencesResponse(prefs))
}

// UpdatePreferences handles PUT /users/me/preferences
// @Summary Update preferences
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.UpdatePreferencesRequest true "Preference fields to change"
// @Success 200 {object} utils.APIResponse{data=dto.PreferencesResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /users/me/preferences [put]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.updatePreferencesUseCase.Execute(c.Request.Context(), usecases.UpdatePreferencesCommand{
		UserID: actor.ID,
		Patch: user.PreferencesPatch{
			Theme:               req.Theme,
			Language:            req.Language,
			Timezone:            req.Timezone,
			EmailNotifications:  req.EmailNotifications,
			DefaultWorkspaceSID: req.DefaultWorkspaceSID,
		},
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "preferences updated", dto.ToPreferencesResponse(prefs))
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param role query string false "Platform role"
// @Param tier query string false "Subscription tier"
// @Param status query string false "Account status"
// @Param search query string false "Email or name fragment"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Failure 403 {object} utils.APIResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.listUsersUseCase.Execute(c.Request.Context(), usecases.ListUsersQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     req.Role,
		Tier:     req.Tier,
		Status:   req.Status,
		Search:   req.Search,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, mapList(result.Users, dto.ToUserResponse), result.Total, result.Page, result.PageSize)
}

// UpdateUserAccess handles PATCH /admin/users/:id
// @Summary Change a user's role, tier or status
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserAccessRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUserAccess(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateUserAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.updateUserAccessUseCase.Execute(c.Request.Context(), usecases.UpdateUserAccessCommand{
		ActorID:   actor.ID,
		TargetSID: c.Param("id"),
		Role:      req.Role,
		Tier:      req.SubscriptionTier,
		Status:    req.Status,
	})
	if err != nil {
		h.logger.Warnw("failed to update user access", "target_sid", c.Param("id"), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "user updated", dto.ToUserResponse(u))
}
