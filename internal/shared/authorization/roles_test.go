package authorization

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

func TestParseUserRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseUserRole("admin"))
	assert.Equal(t, RoleInvitedUser, ParseUserRole("invited_user"))
	assert.Equal(t, RoleClient, ParseUserRole("superuser"))
}

func TestCanAccessResourceByOwnerID(t *testing.T) {
	assert.True(t, CanAccessResourceByOwnerID(1, RoleClient, 1))
	assert.False(t, CanAccessResourceByOwnerID(1, RoleClient, 2))
	assert.True(t, CanAccessResourceByOwnerID(1, RoleAdmin, 2))
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, role := range []string{"admin", "client", ""} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(constants.ContextKeyUserRole, role)

		RequireAdmin()(c)

		if role == "admin" {
			assert.False(t, c.IsAborted())
		} else {
			assert.True(t, c.IsAborted())
			assert.Equal(t, http.StatusForbidden, w.Code)
		}
	}
}
