package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/config"
	"github.com/jobdesk/jobdesk/internal/database"
	applicationsrepo "github.com/jobdesk/jobdesk/internal/database/applications"
	auditrepo "github.com/jobdesk/jobdesk/internal/database/audit"
	jobsrepo "github.com/jobdesk/jobdesk/internal/database/jobs"
	usersrepo "github.com/jobdesk/jobdesk/internal/database/users"
	http_controllers "github.com/jobdesk/jobdesk/internal/http"
	"github.com/jobdesk/jobdesk/internal/scheduler"
	"github.com/jobdesk/jobdesk/internal/tasks"
	"github.com/jobdesk/jobdesk/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so in-flight requests
	// can still enqueue tasks.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting jobdesk v%s", version)

	if cfg.Auth.SecretKey == "" {
		log.Fatalf("AUTH_SECRET_KEY is not set; refusing to start without a credential secret")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := usersrepo.NewRepository(db.DB)
	jobRepo := jobsrepo.NewRepository(db.DB)
	applicationRepo := applicationsrepo.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	imageStore, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	hasher, err := auth.NewHasher(cfg.Auth.SecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential hasher: %v", err)
	}

	csrfKey, err := auth.DeriveCSRFKey(cfg.Auth.SecretKey)
	if err != nil {
		log.Fatalf("Failed to derive CSRF key: %v", err)
	}

	authService := auth.NewService(userRepo, hasher)
	authMiddleware := auth.NewMiddleware(authService, cfg.Auth.CookieName)
	authController := auth.NewAuthController(authService, auditRepo, cfg.Auth)
	defer authController.Stop()

	// Task queue and cleanup scheduler
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditEventsQueue(auditRepo),
			tasks.NewCleanupUploadsQueue(jobRepo, imageStore),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Tasks.Schedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Auth:              authController,
		Middleware:        authMiddleware,
		Jobs:              http_controllers.NewJobsController(jobRepo, applicationRepo, imageStore, auditRepo),
		Users:             http_controllers.NewUsersController(userRepo, auditRepo),
		Health:            http_controllers.NewHealthController(db, version),
		UploadsDir:        imageStore.Dir(),
		CSRFKey:           csrfKey,
		SecureCookies:     cfg.Auth.SecureCookies,
		SessionCookieName: cfg.Auth.CookieName,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
