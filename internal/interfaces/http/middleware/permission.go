package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// WorkspaceParam is the route parameter carrying the workspace SID.
const WorkspaceParam = "id"

type PermissionMiddleware struct {
	guard  *access.Guard
	logger logger.Interface
}

func NewPermissionMiddleware(guard *access.Guard, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		guard:  guard,
		logger: logger,
	}
}

// RequirePermission checks perm in the workspace named by the :id parameter.
// Non-members get 404 so workspace existence does not leak.
func (m *PermissionMiddleware) RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(constants.ContextKeyUserID)
		userSID := c.GetString(constants.ContextKeyUserSID)
		if userID == 0 || userSID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
			c.Abort()
			return
		}

		workspaceSID := c.Param(WorkspaceParam)
		acc, err := m.guard.Require(c.Request.Context(), access.Actor{ID: userID, SID: userSID}, workspaceSID, perm)
		if err != nil {
			m.logger.Debugw("workspace permission denied",
				"user_sid", userSID,
				"workspace_sid", workspaceSID,
				"permission", perm,
				"error", err,
			)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspaceID, acc.Workspace.ID())
		c.Set(constants.ContextKeyWorkspaceSID, acc.Workspace.SID())
		c.Set(constants.ContextKeyWorkspaceRole, acc.Role().String())
		c.Next()
	}
}
