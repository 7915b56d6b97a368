package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newMiddlewareRouter(t *testing.T, now time.Time) (*gin.Engine, *Issuer, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	iss, ver := newTestIssuer(t, "HS256", now)
	store := newMemStore()
	store.put(Identity{ID: "u1", Email: "alice@example.com", Role: "user", Confirmed: true})

	r := gin.New()
	r.GET("/protected", RequireAccessToken(ver, store), func(c *gin.Context) {
		email, err := Email(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r, iss, store
}

func TestRequireAccessTokenAcceptsValidToken(t *testing.T) {
	r, iss, _ := newMiddlewareRouter(t, time.Now())

	tok, err := iss.AccessToken("alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "alice@example.com") {
		t.Fatalf("identity not injected: %s", w.Body.String())
	}
}

func TestRequireAccessTokenRejections(t *testing.T) {
	now := time.Now()
	r, iss, _ := newMiddlewareRouter(t, now.Add(-time.Hour))

	expired, _ := iss.AccessToken("alice@example.com") // issued an hour ago, 15m TTL
	_, iss2, _ := newMiddlewareRouter(t, now)
	scoped, _ := iss2.EmailVerifyToken("alice@example.com")
	unknown, _ := iss2.AccessToken("ghost@example.com")

	cases := []struct {
		name   string
		header string
		body   string
	}{
		{"missing header", "", "missing bearer token"},
		{"not bearer", "Basic abc", "missing bearer token"},
		{"garbage token", "Bearer junk", "invalid token"},
		{"expired token", "Bearer " + expired, "token expired"},
		{"action-scoped token", "Bearer " + scoped, "invalid token"},
		{"unknown subject", "Bearer " + unknown, "invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("want 401, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.body) {
				t.Fatalf("want %q in body, got %s", tc.body, w.Body.String())
			}
		})
	}
}
