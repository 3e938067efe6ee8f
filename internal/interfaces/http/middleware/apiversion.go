package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/shared/utils"
)

const (
	HeaderAPIVersion     = "X-API-Version"
	ContextKeyAPIVersion = "api_version"

	CurrentAPIVersion = 1
	MinAPIVersion     = 1
)

var vendorMediaType = regexp.MustCompile(`application/vnd\.connecthub\.v(\d+)\+json`)

// APIVersion negotiates the API version from X-API-Version or a
// vendor Accept type (application/vnd.connecthub.v1+json). Requests without
// either get CurrentAPIVersion; an explicit version outside the supported
// range is rejected with 400. The resolved version is echoed in the response.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		version, ok := negotiateVersion(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest,
				fmt.Sprintf("unsupported API version, supported range is %d-%d", MinAPIVersion, CurrentAPIVersion))
			c.Abort()
			return
		}
		c.Set(ContextKeyAPIVersion, version)
		c.Header(HeaderAPIVersion, strconv.Itoa(version))
		c.Next()
	}
}

// GetAPIVersion returns the negotiated version, CurrentAPIVersion when unset.
func GetAPIVersion(c *gin.Context) int {
	if v, ok := c.Get(ContextKeyAPIVersion); ok {
		if ver, ok := v.(int); ok {
			return ver
		}
	}
	return CurrentAPIVersion
}

func negotiateVersion(c *gin.Context) (int, bool) {
	raw := c.GetHeader(HeaderAPIVersion)
	if raw == "" {
		if m := vendorMediaType.FindStringSubmatch(c.GetHeader("Accept")); len(m) == 2 {
			raw = m[1]
		}
	}
	if raw == "" {
		return CurrentAPIVersion, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < MinAPIVersion || v > CurrentAPIVersion {
		return 0, false
	}
	return v, true
}
