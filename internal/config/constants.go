package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./linkshelf.db"

	// DefaultMaxImportFileSize caps uploaded bookmark export files at 5 MB
	DefaultMaxImportFileSize int64 = 5 * 1024 * 1024
)
