package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/auth"
	"github.com/mrlokans/linkshelf/internal/config"
	"github.com/mrlokans/linkshelf/internal/database"
	auditdb "github.com/mrlokans/linkshelf/internal/database/audit"
	"github.com/mrlokans/linkshelf/internal/database/bookmarks"
	"github.com/mrlokans/linkshelf/internal/database/collections"
	"github.com/mrlokans/linkshelf/internal/database/imports"
	"github.com/mrlokans/linkshelf/internal/database/settings"
	"github.com/mrlokans/linkshelf/internal/database/tags"
	http_controllers "github.com/mrlokans/linkshelf/internal/http"
	"github.com/mrlokans/linkshelf/internal/importers"
	"github.com/mrlokans/linkshelf/internal/linkcheck"
	"github.com/mrlokans/linkshelf/internal/scheduler"
	"github.com/mrlokans/linkshelf/internal/tasks"
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
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Linkshelf v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	bookmarkRepo := bookmarks.NewRepository(db.DB)
	collectionRepo := collections.NewRepository(db.DB)
	tagRepo := tags.NewRepository(db.DB)
	importRepo := imports.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)

	// Audit trail plus payload archive for failed imports
	auditService := audit.NewService(auditdb.NewRepository(db.DB))
	archiver := audit.NewArchiver(cfg.Audit.Dir)

	// Import reconciler runs over the transactional store
	reconciler := importers.NewReconciler(imports.NewStore(db.DB))

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
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

		// Register task queues
		taskClient.Register(
			tasks.NewCheckLinksQueue(bookmarkRepo, linkcheck.NewChecker(cfg.LinkCheck.Timeout), auditService),
			tasks.NewCleanupOrphanTagsQueue(tagRepo),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Scheduled link checking
	linkCheckScheduler := scheduler.NewLinkCheckScheduler(bookmarkRepo, settingsRepo, auditService, cfg.LinkCheck)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if err := linkCheckScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: Failed to start link check scheduler: %v", err)
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		// Create auth service
		authService = auth.NewService(db.DB, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		// Initialize session manager
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		// Create auth middleware
		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			// Generate a secret
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		// An empty user table means nobody can log in yet
		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Run 'linkshelf user-create' to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:             db,
		Reconciler:           reconciler,
		AuditService:         auditService,
		Archiver:             archiver,
		BookmarkStore:        bookmarkRepo,
		CollectionStore:      collectionRepo,
		TagStore:             tagRepo,
		ImportStore:          importRepo,
		BookmarkStatsStore:   bookmarkRepo,
		CollectionStatsStore: collectionRepo,
		TagStatsStore:        tagRepo,
		AuthService:          authService,
		SessionManager:       sessionManager,
		AuthMiddleware:       authMiddleware,
		AuthConfig:           cfg.Auth,
		CSRFSecret:           csrfSecret,
		SecureCookies:        cfg.Auth.SecureCookies,
		MaxImportFileSize:    cfg.Import.MaxFileSizeBytes,
		TaskClient:           taskClient,
		LinkCheckScheduler:   linkCheckScheduler,
		Version:              version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		schedulerCancel()
		linkCheckScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
