// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── bookmarks/       # Bookmark CRUD, search and tagging
//	├── collections/     # Collection management
//	├── tags/            # Tag management and associations
//	├── imports/         # Import transactions and session history
//	├── audit/           # Audit event storage
//	└── settings/        # Application settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./app.db")
//
//	// Create domain-specific repositories
//	bookmarksRepo := bookmarks.NewRepository(db.DB)
//	tagsRepo := tags.NewRepository(db.DB)
//
//	// Use repositories
//	bookmark, err := bookmarksRepo.GetBookmarkByID(123)
//	tags, err := tagsRepo.GetTagsForUser(userID)
//
// # Adding a New Domain
//
// To add a new domain (e.g., analytics):
//
//  1. Create a new sub-package: internal/database/analytics/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
