package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"contacts-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func doRequest(t *testing.T, role string, withIdentity bool, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	if withIdentity {
		r.Use(func(c *gin.Context) {
			ctx := auth.WithIdentity(c.Request.Context(), "u1", "alice@example.com", role)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	r.GET("/admin", RequireAnyRole(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	return w.Code
}

func TestRequireAnyRole(t *testing.T) {
	if code := doRequest(t, RoleAdmin, true, RoleAdmin); code != http.StatusOK {
		t.Fatalf("admin on admin route: want 200, got %d", code)
	}
	if code := doRequest(t, RoleUser, true, RoleAdmin); code != http.StatusForbidden {
		t.Fatalf("user on admin route: want 403, got %d", code)
	}
	// No hierarchy: admin is rejected where only moderator is listed.
	if code := doRequest(t, RoleAdmin, true, RoleModerator); code != http.StatusForbidden {
		t.Fatalf("admin on moderator-only route: want 403, got %d", code)
	}
	if code := doRequest(t, RoleUser, true, RoleUser, RoleModerator, RoleAdmin); code != http.StatusOK {
		t.Fatalf("user on shared route: want 200, got %d", code)
	}
}

func TestRequireAnyRoleWithoutIdentity(t *testing.T) {
	if code := doRequest(t, "", false, RoleAdmin); code != http.StatusUnauthorized {
		t.Fatalf("missing identity: want 401, got %d", code)
	}
}
