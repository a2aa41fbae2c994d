package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/config"
	"github.com/jobdesk/jobdesk/internal/database"
	auditrepo "github.com/jobdesk/jobdesk/internal/database/audit"
	usersrepo "github.com/jobdesk/jobdesk/internal/database/users"
)

type authTestEnv struct {
	router *gin.Engine
	audit  *auditrepo.Repository
}

func setupAuthFlow(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := usersrepo.NewRepository(db.DB)
	audit := auditrepo.NewRepository(db.DB)

	svc := NewService(users, newTestHasher(t))
	mw := NewMiddleware(svc, "test_session")

	controller := NewAuthController(svc, audit, config.Auth{
		CookieName:       "test_session",
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	})
	t.Cleanup(controller.Stop)

	router := gin.New()
	controller.RegisterRoutes(router)
	router.GET("/api/users/profile", mw.RequireSession(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"email": identity.Email})
	})

	return &authTestEnv{router: router, audit: audit}
}

func (env *authTestEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "test_session" {
			return c
		}
	}
	t.Fatal("response did not set the session cookie")
	return nil
}

func TestAuthFlow_RegisterLoginAccess(t *testing.T) {
	env := setupAuthFlow(t)

	w := env.postJSON("/auth/register", `{"email":"jane@example.com","password":"pw123","first_name":"Jane","last_name":"Doe"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("register response is not JSON: %v", err)
	}
	for _, secret := range []string{"salt", "password_digest", "session_token", "password"} {
		if _, leaked := created[secret]; leaked {
			t.Errorf("register response leaks %q", secret)
		}
	}

	w = env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"pw123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("session cookie is not HTTP-only")
	}
	if cookie.Value == "" {
		t.Error("session cookie is empty")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("profile with session: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("profile without session: status = %d, want 401", rec.Code)
	}
}

func TestAuthFlow_DuplicateRegistration(t *testing.T) {
	env := setupAuthFlow(t)

	body := `{"email":"jane@example.com","password":"pw123","first_name":"Jane","last_name":"Doe"}`
	if w := env.postJSON("/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", w.Code)
	}

	w := env.postJSON("/auth/register", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", w.Code)
	}
	if strings.Contains(w.Body.String(), "exists") {
		t.Errorf("duplicate response confirms the account exists: %s", w.Body.String())
	}
}

func TestAuthFlow_BadCredentials(t *testing.T) {
	env := setupAuthFlow(t)

	if w := env.postJSON("/auth/register", `{"email":"jane@example.com","password":"pw123","first_name":"Jane","last_name":"Doe"}`); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}

	wrongPassword := env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"wrong"}`)
	unknownEmail := env.postJSON("/api/auth/login", `{"email":"nobody@example.com","password":"pw123"}`)

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", unknownEmail.Code)
	}
	// Same body either way, so the response never says which part was wrong.
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("credential failures are distinguishable: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestAuthFlow_LoginRateLimited(t *testing.T) {
	env := setupAuthFlow(t)

	if w := env.postJSON("/auth/register", `{"email":"jane@example.com","password":"pw123","first_name":"Jane","last_name":"Doe"}`); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}

	for i := 0; i < 3; i++ {
		env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"wrong"}`)
	}

	w := env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"pw123"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("locked-out login status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestAuthFlow_AuditTrail(t *testing.T) {
	env := setupAuthFlow(t)

	env.postJSON("/auth/register", `{"email":"jane@example.com","password":"pw123","first_name":"Jane","last_name":"Doe"}`)
	env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"pw123"}`)
	env.postJSON("/api/auth/login", `{"email":"jane@example.com","password":"wrong"}`)

	events, total, err := env.audit.ListEvents(0, 10, 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if total != 3 {
		t.Errorf("audit events = %d, want 3", total)
	}

	actions := make(map[string]int)
	for _, e := range events {
		actions[e.Action]++
	}
	if actions["register"] != 1 || actions["login"] != 2 {
		t.Errorf("unexpected audit actions: %v", actions)
	}
}
