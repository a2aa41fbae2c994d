package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/config"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// Auditor records auth events. A nil auditor disables the trail.
type Auditor interface {
	LogEvent(event *entities.AuditEvent) error
}

// AuthController handles the registration and login endpoints.
type AuthController struct {
	service       *Service
	auditor       Auditor
	rateLimiter   *RateLimiter
	cookieName    string
	secureCookies bool
}

// NewAuthController creates the controller and its login rate limiter.
func NewAuthController(service *Service, auditor Auditor, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:       service,
		auditor:       auditor,
		rateLimiter:   rateLimiter,
		cookieName:    cfg.CookieName,
		secureCookies: cfg.SecureCookies,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth/register", ac.Register)
	router.POST("/api/auth/login", ac.Login)
}

// Stop cleans up the rate limiter's background goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ac.service.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUserExists):
			// Same response shape as other rejections; the account's
			// existence is not confirmed to the caller.
			ac.logAuthEvent(0, "register", c.ClientIP(), entities.AuditStatusFailed, "duplicate email")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to register with the supplied details"})
		default:
			log.Printf("Registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	ac.logAuthEvent(user.ID, "register", c.ClientIP(), entities.AuditStatusSuccess, "")
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/auth/login. On success the session token is set
// as an HTTP-only cookie; the previous session for the account, if any,
// stops validating.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
	}

	user, token, err := ac.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidCredentials):
			if ac.rateLimiter != nil {
				ac.rateLimiter.RecordFailure(clientIP, req.Email)
			}
			ac.logAuthEvent(0, "login", clientIP, entities.AuditStatusFailed, "invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		default:
			log.Printf("Login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}
	ac.logAuthEvent(user.ID, "login", clientIP, entities.AuditStatusSuccess, "")

	c.SetSameSite(http.SameSiteStrictMode)
	// Max-age 0 makes it a session cookie; the token itself has no expiry,
	// it lives until the next login overwrites it.
	c.SetCookie(ac.cookieName, token, 0, "/", "", ac.secureCookies, true)

	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) logAuthEvent(userID uint, action, ip string, status entities.AuditStatus, errMsg string) {
	if ac.auditor == nil {
		return
	}
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ip,
		Status:    status,
		ErrorMsg:  errMsg,
	}
	if err := ac.auditor.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event: %v", err)
	}
}
