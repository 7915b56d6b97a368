package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contacts-platform/internal/audit"
	"contacts-platform/internal/auth"
	"contacts-platform/internal/config"
	"contacts-platform/internal/contact"
	"contacts-platform/internal/mailer"
	"contacts-platform/internal/rbac"
	"contacts-platform/internal/storage"
	"contacts-platform/internal/user"

	"github.com/gin-gonic/gin"
)

type testEnv struct {
	router *gin.Engine
	mail   *mailer.MemoryDispatcher
	users  *user.MemoryRepo
	events *audit.MemoryRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.AuthConfig{
		SecretKey:       "test-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	codec, err := auth.NewCodec(cfg)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	issuer := auth.NewIssuer(codec, cfg)
	verifier := auth.NewVerifier(codec)
	hasher := auth.NewPasswordHasher()

	userRepo := user.NewMemoryRepo()
	identities := user.NewIdentityStore(userRepo)
	mail := mailer.NewMemoryDispatcher()
	events := audit.NewMemoryRepo()

	avatars, err := storage.NewDiskStore(t.TempDir(), "/static/avatars")
	if err != nil {
		t.Fatalf("avatars: %v", err)
	}

	h := Handlers{
		Sessions: auth.NewSessionManager(identities, issuer, verifier, hasher),
		Users:    user.NewService(userRepo, nil, issuer, verifier, hasher, mail, "http://localhost:8080"),
		Contacts: contact.NewService(contact.NewMemoryRepo()),
		Avatars:  avatars,
		Audit:    audit.NewService(events),
	}

	authMW := auth.RequireAccessToken(verifier, identities)

	r := gin.New()
	api := r.Group("/api")
	{
		ag := api.Group("/auth")
		ag.POST("/signup", h.Signup)
		ag.POST("/login", h.Login)
		ag.POST("/refresh_token", h.Refresh)
		ag.GET("/confirmed_email/:token", h.ConfirmEmail)
		ag.POST("/resend_confirm_email", h.ResendConfirmation)
		ag.POST("/request_reset_password", h.RequestPasswordReset)
		ag.POST("/reset_password/:token", h.ResetPassword)
		ag.POST("/logout", authMW, h.Logout)

		ug := api.Group("/users", authMW)
		ug.GET("/me", h.Me)
		ug.GET("", rbac.RequireAnyRole(rbac.RoleAdmin), h.ListUsers)
		ug.PATCH("/:user_id/role", rbac.RequireAnyRole(rbac.RoleAdmin), h.ChangeRole)

		cg := api.Group("/contacts", authMW)
		cg.POST("", h.CreateContact)
		cg.GET("", h.ListContacts)
		cg.GET("/search", h.SearchContacts)
		cg.GET("/birthdays", h.UpcomingBirthdays)
		cg.GET("/:contact_id", h.GetContact)
		cg.PUT("/:contact_id", h.UpdateContact)
		cg.DELETE("/:contact_id", h.DeleteContact)
	}

	return &testEnv{router: r, mail: mail, users: userRepo, events: events}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func (e *testEnv) confirmationToken(t *testing.T, n int) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sent := e.mail.Sent(); len(sent) >= n {
			link := sent[n-1].Data["Link"]
			return link[strings.LastIndex(link, "/")+1:]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("confirmation mail %d never arrived", n)
	return ""
}

func (e *testEnv) signupAndLogin(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	base := len(e.mail.Sent())
	if w := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "tester", "email": email, "password": password,
	}); w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	tok := e.confirmationToken(t, base+1)
	if w := e.do(t, http.MethodGet, "/api/auth/confirmed_email/"+tok, "", nil); w.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", w.Code, w.Body.String())
	}
	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestSignupConfirmLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "s3cret-password",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}

	// Duplicate signup conflicts.
	if w := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": "s3cret-password",
	}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: want 409, got %d", w.Code)
	}

	// Login before confirmation is refused.
	if w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "s3cret-password",
	}); w.Code != http.StatusUnauthorized {
		t.Fatalf("unconfirmed login: want 401, got %d", w.Code)
	}

	tok := e.confirmationToken(t, 1)
	if w := e.do(t, http.MethodGet, "/api/auth/confirmed_email/"+tok, "", nil); w.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "s3cret-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["access_token"] == "" || body["refresh_token"] == "" || body["token_type"] != "bearer" {
		t.Fatalf("unexpected login body: %v", body)
	}

	// Wrong password is a plain 401.
	if w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", w.Code)
	}
}

func TestRefreshRotationAndLogoutOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	access, refresh := e.signupAndLogin(t, "bob@example.com", "s3cret-password")

	w := e.do(t, http.MethodPost, "/api/auth/refresh_token", "", gin.H{"refresh_token": refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	next := decode(t, w)["refresh_token"].(string)

	// The consumed token is revoked.
	if w := e.do(t, http.MethodPost, "/api/auth/refresh_token", "", gin.H{"refresh_token": refresh}); w.Code != http.StatusUnauthorized {
		t.Fatalf("replay: want 401, got %d", w.Code)
	}

	if w := e.do(t, http.MethodPost, "/api/auth/logout", access, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodPost, "/api/auth/refresh_token", "", gin.H{"refresh_token": next}); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: want 401, got %d", w.Code)
	}
}

func TestAccountEnumerationResistance(t *testing.T) {
	e := newTestEnv(t)

	// Unknown email and wrong password present identically at login.
	w1 := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "x"})
	if w1.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w1.Code)
	}

	// Reset request and resend succeed for unknown accounts.
	if w := e.do(t, http.MethodPost, "/api/auth/request_reset_password", "", gin.H{"email": "ghost@example.com"}); w.Code != http.StatusOK {
		t.Fatalf("reset request: want 200, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/api/auth/resend_confirm_email", "", gin.H{"email": "ghost@example.com"}); w.Code != http.StatusOK {
		t.Fatalf("resend: want 200, got %d", w.Code)
	}
}

func TestContactCRUDOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	access, _ := e.signupAndLogin(t, "carol@example.com", "s3cret-password")

	// Unauthenticated access is rejected.
	if w := e.do(t, http.MethodGet, "/api/contacts", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}

	w := e.do(t, http.MethodPost, "/api/contacts", access, gin.H{
		"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com",
		"phone": "+380501234567", "birthday": "1990-05-20T00:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	id := decode(t, w)["id"].(string)

	if w := e.do(t, http.MethodGet, "/api/contacts/"+id, access, nil); w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPut, "/api/contacts/"+id, access, gin.H{"phone": "+380671112233"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["phone"] != "+380671112233" {
		t.Fatalf("phone not updated: %s", w.Body.String())
	}

	if w := e.do(t, http.MethodGet, "/api/contacts/search?q=jane", access, nil); w.Code != http.StatusOK {
		t.Fatalf("search: %d %s", w.Code, w.Body.String())
	}

	if w := e.do(t, http.MethodDelete, "/api/contacts/"+id, access, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodGet, "/api/contacts/"+id, access, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: want 404, got %d", w.Code)
	}

	// Invalid payload is a 400.
	if w := e.do(t, http.MethodPost, "/api/contacts", access, gin.H{"first_name": "Only"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create: want 400, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newTestEnv(t)
	access, _ := e.signupAndLogin(t, "dave@example.com", "s3cret-password")

	if w := e.do(t, http.MethodGet, "/api/users", access, nil); w.Code != http.StatusForbidden {
		t.Fatalf("user listing as user: want 403, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/users/me", access, nil); w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
}

func TestAuditTrailRecordsAuthEvents(t *testing.T) {
	e := newTestEnv(t)
	access, _ := e.signupAndLogin(t, "erin@example.com", "s3cret-password")
	if w := e.do(t, http.MethodPost, "/api/auth/logout", access, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}

	var types []audit.EventType
	for _, ev := range e.events.Events() {
		types = append(types, ev.Type)
	}
	want := []audit.EventType{audit.EventSignup, audit.EventEmailConfirmed, audit.EventLogin, audit.EventLogout}
	if len(types) != len(want) {
		t.Fatalf("want %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d: want %s, got %s", i, want[i], types[i])
		}
	}
}
