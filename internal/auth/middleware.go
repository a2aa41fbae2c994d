package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/entities"
)

// ContextKeyIdentity is the Gin context key the resolved identity is stored
// under. Handlers read it through CurrentIdentity rather than directly.
const ContextKeyIdentity = "auth_identity"

// Identity is the immutable view of the caller that session validation
// attaches to the request context. Role and ID always come from the
// server-side record the session token resolved to, never from anything
// the client sent alongside it.
type Identity struct {
	ID    uint
	Email string
	Role  entities.UserRole
}

// HasRole reports whether the identity carries the required role.
func HasRole(id Identity, role entities.UserRole) bool {
	return id.Role == role
}

// IsOwner reports whether the identity owns the resource with the given
// owner id.
func IsOwner(id Identity, ownerID uint) bool {
	return id.ID == ownerID
}

// Middleware gates routes on a valid session and, optionally, on role or
// ownership predicates evaluated over the resolved identity.
type Middleware struct {
	service    *Service
	cookieName string
}

func NewMiddleware(service *Service, cookieName string) *Middleware {
	return &Middleware{service: service, cookieName: cookieName}
}

// RequireSession validates the session cookie and attaches the resolved
// identity to the request context.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			abortNotAuthenticated(c)
			return
		}

		user, err := m.service.ValidateSession(token)
		if err != nil {
			if errors.Is(err, ErrNotAuthenticated) {
				abortNotAuthenticated(c)
				return
			}
			log.Printf("Session validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		}

		c.Set(ContextKeyIdentity, Identity{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})
		c.Next()
	}
}

// RequireRole allows the request through only if the resolved identity
// carries the given role. Must run after RequireSession.
func (m *Middleware) RequireRole(role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortNotAuthenticated(c)
			return
		}
		if !HasRole(identity, role) {
			abortForbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequireOwner allows the request through only if the route parameter names
// the resolved identity itself. Must run after RequireSession.
func (m *Middleware) RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortNotAuthenticated(c)
			return
		}

		ownerID, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "invalid " + param,
			})
			return
		}

		if !IsOwner(identity, uint(ownerID)) {
			abortForbidden(c, "not the resource owner")
			return
		}
		c.Next()
	}
}

// CurrentIdentity retrieves the identity resolved by RequireSession.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func abortNotAuthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication required",
	})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error": message,
	})
}
