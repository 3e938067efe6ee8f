package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetBySID(ctx context.Context, sid string) (*user.User, error)
}

type AuthMiddleware struct {
	jwtService TokenVerifier
	users      UserLookup
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService TokenVerifier, users UserLookup, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		logger:     logger,
	}
}

// RequireAuth accepts a bearer access token, loads the account and stores its
// id, SID and current platform role in the context. The role comes from the
// stored account, not the token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := m.jwtService.VerifyAccess(token)
		if err != nil {
			m.logger.Debugw("rejected access token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		u, err := m.users.GetBySID(c.Request.Context(), claims.UserSID)
		if err != nil {
			m.logger.Errorw("failed to load authenticated user", "user_sid", claims.UserSID, "error", err)
			utils.ErrorResponse(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
			c.Abort()
			return
		}
		if u == nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "account no longer exists")
			c.Abort()
			return
		}
		if !u.IsActive() {
			utils.ErrorResponse(c, http.StatusForbidden, user.ErrUserDisabled.Error())
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, u.ID())
		c.Set(constants.ContextKeyUserSID, u.SID())
		c.Set(constants.ContextKeyUserRole, u.Role().String())

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
