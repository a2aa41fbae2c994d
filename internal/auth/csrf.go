package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader carries the CSRF token both ways: the server exposes it on
// safe responses, clients echo it back on state-changing requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFMiddleware protects cookie-authenticated requests against cross-site
// request forgery. Requests without the session cookie carry no ambient
// authority, so they pass through unchecked; that keeps registration and
// login usable by plain API clients.
func CSRFMiddleware(key []byte, secure bool, sessionCookie string) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if _, err := c.Cookie(sessionCookie); err != nil {
			c.Next()
			return
		}

		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrf.Token(r)
			c.Set("csrf_token", token)
			w.Header().Set(CSRFTokenHeader, token)
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get("csrf_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
