package rbac

import (
	"net/http"

	"contacts-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows the request through if the authenticated identity
// holds any of the provided roles. There is no bypass role; routes that
// admins may use must list RoleAdmin explicitly.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
