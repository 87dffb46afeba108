package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/linkshelf/internal/bookmarkfile"
	"github.com/mrlokans/linkshelf/internal/config"
	"github.com/mrlokans/linkshelf/internal/database"
	"github.com/mrlokans/linkshelf/internal/database/imports"
	"github.com/mrlokans/linkshelf/internal/importers"
)

// ImportBookmarksCommand imports a browser bookmark export file directly
// into the database, without going through the HTTP API.
type ImportBookmarksCommand struct {
	FilePath     string
	DatabasePath string
	UserID       uint
	Verbose      bool
	DryRun       bool
}

func NewImportBookmarksCommand() *ImportBookmarksCommand {
	return &ImportBookmarksCommand{}
}

func (cmd *ImportBookmarksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.FilePath, "file", "", "Path to a browser bookmark export HTML file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&userID, "user", 0, "User ID to import the bookmarks for")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse the file and report counts without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import bookmarks from a browser HTML export (Chrome, Firefox, Safari).\n\n")
		fmt.Fprintf(os.Stderr, "Folders become collections and links the user already has are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import an exported bookmarks file:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file bookmarks.html\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file bookmarks.html -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	cmd.UserID = uint(userID)

	return nil
}

func (cmd *ImportBookmarksCommand) Run() error {
	fmt.Println("Bookmark Import")
	fmt.Println("===============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("bookmark file not found: %s", cmd.FilePath)
	}

	fmt.Printf("File: %s\n", cmd.FilePath)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open bookmark file: %w", err)
	}
	defer file.Close()

	nodes, err := bookmarkfile.NewParser().Parse(file)
	if err != nil {
		return fmt.Errorf("failed to parse bookmark file: %w", err)
	}

	links, folders := bookmarkfile.Count(nodes)
	if links == 0 {
		fmt.Println("No links found in bookmark file")
		return nil
	}

	fmt.Printf("Found %d links in %d folders\n", links, folders)

	if cmd.Verbose {
		fmt.Println("\n=== Top-Level Entries ===")
		for i, node := range nodes {
			switch node.Kind {
			case bookmarkfile.KindFolder:
				childLinks, _ := bookmarkfile.Count(node.Children)
				fmt.Printf("%d. [folder] %s (%d links)\n", i+1, node.Title, childLinks)
			default:
				fmt.Printf("%d. %s -> %s\n", i+1, node.Title, node.URL)
			}
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	reconciler := importers.NewReconciler(imports.NewStore(db.DB))
	result, err := reconciler.Import(cmd.UserID, nodes)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("Nodes processed:     %d\n", result.NodesProcessed)
	fmt.Printf("Bookmarks created:   %d\n", result.BookmarksCreated)
	fmt.Printf("Collections created: %d\n", result.CollectionsCreated)
	fmt.Printf("Duplicates skipped:  %d\n", result.LinksSkipped)

	return nil
}
