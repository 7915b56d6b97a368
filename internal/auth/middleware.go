package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireAccessToken verifies a scope-less bearer token, resolves its
// subject to a stored identity, and injects the identity into the request
// context. It does not perform role checks; those belong to internal/rbac.
func RequireAccessToken(verifier *Verifier, store IdentityStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := verifier.Verify(tok, ScopeNone, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage(err)})
			return
		}

		id, err := store.FindByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), id.ID, id.Email, id.Role)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", id.ID)
		c.Set("email", id.Email)
		c.Set("role", id.Role)

		c.Next()
	}
}

func unauthorizedMessage(err error) string {
	if errors.Is(err, ErrExpired) {
		return "token expired"
	}
	return "invalid token"
}
