package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// RouterConfig carries the controllers and middleware the router wires
// together.
type RouterConfig struct {
	Auth       *auth.AuthController
	Middleware *auth.Middleware
	Jobs       *JobsController
	Users      *UsersController
	Health     *HealthController

	// UploadsDir, when set, is served read-only under /uploads.
	UploadsDir string

	// CSRFKey enables CSRF protection for session-bearing requests when
	// non-empty. Tests leave it unset.
	CSRFKey           []byte
	SecureCookies     bool
	SessionCookieName string
}

// NewRouter builds the Gin engine with all routes and middleware attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	if len(cfg.CSRFKey) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies, cfg.SessionCookieName))
	}

	if cfg.UploadsDir != "" {
		router.Static("/uploads", cfg.UploadsDir)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Status)
	}

	cfg.Auth.RegisterRoutes(router)

	session := cfg.Middleware.RequireSession()
	admin := cfg.Middleware.RequireRole(entities.UserRoleAdmin)

	jobs := router.Group("/api/jobs", session)
	{
		jobs.GET("", cfg.Jobs.ListJobs)
		jobs.POST("", admin, cfg.Jobs.CreateJob)
		jobs.GET("/applied", cfg.Jobs.ListAppliedJobs)
		jobs.POST("/:id/apply", cfg.Jobs.ApplyToJob)
		jobs.DELETE("/:id", cfg.Jobs.DeleteJob)
	}

	users := router.Group("/api/users", session)
	{
		users.GET("", admin, cfg.Users.ListUsers)
		users.GET("/profile", cfg.Users.Profile)
		users.DELETE("/:id", cfg.Middleware.RequireOwner("id"), cfg.Users.DeleteUser)
	}

	return router
}
