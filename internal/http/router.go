package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Apply session middleware if enabled
	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig, cfg.AuditService)
		authController.RegisterRoutes(router)

		// API token management endpoints
		tokenController := auth.NewAPITokenController(cfg.AuthService)
		router.POST("/api/auth/token", tokenController.GenerateToken)
		router.DELETE("/api/auth/token", tokenController.RevokeToken)
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Bookmark endpoints
	if cfg.BookmarkStore != nil {
		bookmarksController := NewBookmarksController(cfg.BookmarkStore, cfg.AuditService)
		router.GET("/api/bookmarks", bookmarksController.ListBookmarks)
		router.GET("/api/bookmarks/:id", bookmarksController.GetBookmark)
		router.DELETE("/api/bookmarks/:id", bookmarksController.DeleteBookmark)
	}

	// Import endpoints
	if cfg.Reconciler != nil && cfg.ImportStore != nil {
		importController := NewImportController(cfg.Reconciler, cfg.ImportStore, cfg.AuditService, cfg.Archiver, cfg.MaxImportFileSize)
		router.POST("/api/bookmarks/import", importController.Import)
		router.GET("/api/imports", importController.ListSessions)
		router.GET("/api/imports/:id", importController.GetSession)
	}

	// Collection endpoints
	if cfg.CollectionStore != nil {
		collectionsController := NewCollectionsController(cfg.CollectionStore, cfg.AuditService)
		router.GET("/api/collections", collectionsController.ListCollections)
		router.POST("/api/collections", collectionsController.CreateCollection)
		router.GET("/api/collections/:id", collectionsController.GetCollection)
		router.DELETE("/api/collections/:id", collectionsController.DeleteCollection)
	}

	// Tag management endpoints
	if cfg.TagStore != nil {
		tagsController := NewTagsController(cfg.TagStore, cfg.TaskClient)
		router.GET("/api/tags", tagsController.GetAllTags)
		router.POST("/api/tags", tagsController.CreateTag)
		router.DELETE("/api/tags/:id", tagsController.DeleteTag)
		router.GET("/api/tags/suggest", tagsController.TagSuggest)
		router.GET("/api/tags/:id/bookmarks", tagsController.GetBookmarksByTag)
		router.POST("/api/bookmarks/:id/tags", tagsController.AddTagToBookmark)
		router.DELETE("/api/bookmarks/:id/tags/:tagId", tagsController.RemoveTagFromBookmark)
		router.POST("/api/admin/tags/cleanup", tagsController.CleanupOrphanTags)
	}

	// Stats endpoint
	if cfg.BookmarkStatsStore != nil && cfg.CollectionStatsStore != nil && cfg.TagStatsStore != nil {
		statsController := NewStatsController(cfg.BookmarkStatsStore, cfg.CollectionStatsStore, cfg.TagStatsStore)
		router.GET("/api/stats", statsController.GetStats)
	}

	// Audit log endpoint
	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.LinkCheckScheduler)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type", tasksController.RunTask)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
		router.GET("/api/admin/linkcheck", tasksController.LinkCheckStatus)
		router.POST("/api/admin/linkcheck/run", tasksController.RunLinkCheck)
	}

	return router
}
