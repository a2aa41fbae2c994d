package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/config"
	"github.com/jobdesk/jobdesk/internal/database"
	applicationsrepo "github.com/jobdesk/jobdesk/internal/database/applications"
	auditrepo "github.com/jobdesk/jobdesk/internal/database/audit"
	jobsrepo "github.com/jobdesk/jobdesk/internal/database/jobs"
	usersrepo "github.com/jobdesk/jobdesk/internal/database/users"
	"github.com/jobdesk/jobdesk/internal/entities"
	"github.com/jobdesk/jobdesk/internal/uploads"
)

// testEnv wires the full stack against an in-memory database, minus CSRF so
// requests don't need token round-trips.
type testEnv struct {
	router *gin.Engine
	users  *usersrepo.Repository
	jobs   *jobsrepo.Repository
	images *uploads.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := usersrepo.NewRepository(db.DB)
	jobs := jobsrepo.NewRepository(db.DB)
	applications := applicationsrepo.NewRepository(db.DB)
	audit := auditrepo.NewRepository(db.DB)

	images, err := uploads.NewStore(t.TempDir(), 5)
	require.NoError(t, err)

	hasher, err := auth.NewHasher("test-secret-key")
	require.NoError(t, err)

	service := auth.NewService(users, hasher)
	middleware := auth.NewMiddleware(service, "test_session")
	authController := auth.NewAuthController(service, audit, config.Auth{
		CookieName:       "test_session",
		MaxLoginAttempts: 100,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	})
	t.Cleanup(authController.Stop)

	router := NewRouter(RouterConfig{
		Auth:       authController,
		Middleware: middleware,
		Jobs:       NewJobsController(jobs, applications, images, audit),
		Users:      NewUsersController(users, audit),
		Health:     NewHealthController(db, "test"),
		UploadsDir: images.Dir(),
	})

	return &testEnv{router: router, users: users, jobs: jobs, images: images}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) postJSON(path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return env.do(req)
}

func (env *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return env.do(req)
}

func (env *testEnv) delete(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return env.do(req)
}

// signUp registers and logs a user in, returning the account and session
// cookie. Admin accounts are promoted before login so the session carries
// the role.
func (env *testEnv) signUp(t *testing.T, email string, admin bool) (*entities.User, *http.Cookie) {
	t.Helper()

	w := env.postJSON("/auth/register",
		`{"email":"`+email+`","password":"pw123","first_name":"Test","last_name":"User"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	user, err := env.users.GetByEmail(email)
	require.NoError(t, err)
	require.NotNil(t, user)

	if admin {
		require.NoError(t, env.users.Update(user.ID, map[string]any{"role": entities.UserRoleAdmin}))
	}

	w = env.postJSON("/api/auth/login", `{"email":"`+email+`","password":"pw123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "test_session" {
			return user, c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil, nil
}

// jobForm builds a multipart job-creation request body.
func jobForm(t *testing.T, fields map[string]string, image []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "logo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func (env *testEnv) createJob(t *testing.T, cookie *http.Cookie, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := jobForm(t, fields, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return env.do(req)
}

func validJobFields() map[string]string {
	return map[string]string{
		"title":       "Backend Engineer",
		"description": "Build the job board",
		"company":     "Acme",
		"salary":      "90000",
	}
}

func TestPing(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSecurityHeaders(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/ping", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := setupTestEnv(t)

	paths := []string{"/api/jobs", "/api/jobs/applied", "/api/users", "/api/users/profile"}
	for _, path := range paths {
		w := env.get(path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "GET %s without session", path)
	}
}
