package http

// This file consolidates the store interface definitions used by HTTP
// controllers. Each controller defines the interface it depends on
// (Interface Segregation Principle); the concrete implementations live
// in the internal/database sub-packages.
//
// BookmarkStore (bookmarks.go):
//   - Paginated, filterable bookmark listing
//   - Single bookmark retrieval and deletion
//
// CollectionStore (collections.go):
//   - Collection listing with bookmark counts
//   - Creation, lookup by name, deletion
//
// TagStore (tags.go):
//   - Tag CRUD operations
//   - Bookmark tag associations
//   - Tag search and suggestions
//
// ImportSessionStore (imports.go):
//   - Import session lifecycle (create, complete, fail)
//   - Import history per user
//
// BookmarkStatsStore / CollectionStatsStore / TagStatsStore (stats.go):
//   - Aggregate counts for the stats endpoint
//
// These interfaces keep controllers testable with in-memory fakes and
// each controller only depends on the methods it actually uses.
