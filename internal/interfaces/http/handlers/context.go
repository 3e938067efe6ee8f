package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// currentActor reads the caller stored by the auth middleware and answers
// 401 when it is missing.
func currentActor(c *gin.Context) (access.Actor, bool) {
	id := c.GetUint(constants.ContextKeyUserID)
	sid := c.GetString(constants.ContextKeyUserSID)
	if id == 0 || sid == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return access.Actor{}, false
	}
	return access.Actor{ID: id, SID: sid}, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// mapList converts items for a JSON list response; nil input renders as [].
func mapList[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
