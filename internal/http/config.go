package http

import (
	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/auth"
	"github.com/mrlokans/linkshelf/internal/config"
	"github.com/mrlokans/linkshelf/internal/database"
	"github.com/mrlokans/linkshelf/internal/importers"
	"github.com/mrlokans/linkshelf/internal/scheduler"
	"github.com/mrlokans/linkshelf/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	Reconciler   *importers.Reconciler
	AuditService *audit.Service
	Archiver     *audit.Archiver

	// Per-controller stores
	BookmarkStore        BookmarkStore
	CollectionStore      CollectionStore
	TagStore             TagStore
	ImportStore          ImportSessionStore
	BookmarkStatsStore   BookmarkStatsStore
	CollectionStatsStore CollectionStatsStore
	TagStatsStore        TagStatsStore

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Import limits
	MaxImportFileSize int64

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Link check scheduler (optional, exposes status and manual runs)
	LinkCheckScheduler *scheduler.LinkCheckScheduler

	// Application info
	Version string
}
