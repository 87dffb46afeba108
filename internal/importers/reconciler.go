package importers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mrlokans/linkshelf/internal/bookmarkfile"
	"github.com/mrlokans/linkshelf/internal/entities"
)

// Store is the storage surface the reconciler needs. The gorm-backed
// implementation lives in internal/database/imports; tests supply an
// in-memory fake.
//
// Find methods return (nil, nil) when no row matches.
type Store interface {
	// WithinTransaction runs fn against a transactional view of the
	// store. Any error from fn rolls the whole transaction back.
	WithinTransaction(fn func(tx Store) error) error

	FindBookmarkByURL(userID uint, url string) (*entities.Bookmark, error)
	CreateBookmark(bookmark *entities.Bookmark) error
	FindCollectionByName(userID uint, name string) (*entities.Collection, error)
	CreateCollection(collection *entities.Collection) error
}

// Result holds the per-subtree outcome of a reconciliation. Results
// from sibling subtrees are combined with add, so every node's
// contribution is counted exactly once.
type Result struct {
	BookmarksCreated   int
	CollectionsCreated int
	LinksSkipped       int
	NodesProcessed     int
}

func (r Result) add(other Result) Result {
	return Result{
		BookmarksCreated:   r.BookmarksCreated + other.BookmarksCreated,
		CollectionsCreated: r.CollectionsCreated + other.CollectionsCreated,
		LinksSkipped:       r.LinksSkipped + other.LinksSkipped,
		NodesProcessed:     r.NodesProcessed + other.NodesProcessed,
	}
}

// Reconciler folds a parsed bookmark tree into a user's stored
// bookmarks and collections inside a single transaction.
//
// Deduplication rules:
//   - a link whose URL the user already has is skipped
//   - a folder whose name matches one of the user's collections reuses it
//
// Folder nesting collapses onto a flat collection set: every folder
// becomes its own collection, and a link always lands in the
// collection of its nearest enclosing folder.
type Reconciler struct {
	store Store

	// one mutex per user serializes concurrent imports for that user
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		locks: make(map[uint]*sync.Mutex),
	}
}

// Import reconciles the forest into the user's bookmarks. Either every
// change lands or none do. Concurrent imports for the same user run
// one at a time; different users proceed independently.
func (r *Reconciler) Import(userID uint, nodes []bookmarkfile.Node) (Result, error) {
	if err := bookmarkfile.ValidateAll(nodes); err != nil {
		return Result{}, fmt.Errorf("validating bookmark tree: %w", err)
	}

	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var result Result
	err := r.store.WithinTransaction(func(tx Store) error {
		res, err := importNodes(tx, userID, nodes, nil)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("importing bookmarks: %w", err)
	}

	return result, nil
}

func (r *Reconciler) userLock(userID uint) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, exists := r.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

// importNodes folds a sibling list and returns the combined result of
// just that subtree.
func importNodes(tx Store, userID uint, nodes []bookmarkfile.Node, collectionID *uint) (Result, error) {
	var total Result
	for _, node := range nodes {
		res, err := importNode(tx, userID, node, collectionID)
		if err != nil {
			return Result{}, err
		}
		total = total.add(res)
	}
	return total, nil
}

func importNode(tx Store, userID uint, node bookmarkfile.Node, collectionID *uint) (Result, error) {
	switch node.Kind {
	case bookmarkfile.KindLink:
		return importLink(tx, userID, node, collectionID)
	case bookmarkfile.KindFolder:
		return importFolder(tx, userID, node, collectionID)
	default:
		return Result{}, fmt.Errorf("%w: %q", bookmarkfile.ErrUnknownKind, node.Kind)
	}
}

func importLink(tx Store, userID uint, node bookmarkfile.Node, collectionID *uint) (Result, error) {
	result := Result{NodesProcessed: 1}

	url := strings.TrimSpace(node.URL)
	if url == "" {
		result.LinksSkipped = 1
		return result, nil
	}

	existing, err := tx.FindBookmarkByURL(userID, url)
	if err != nil {
		return Result{}, fmt.Errorf("looking up bookmark %q: %w", url, err)
	}
	if existing != nil {
		result.LinksSkipped = 1
		return result, nil
	}

	// A whitespace-only title stays empty, nothing is substituted
	bookmark := &entities.Bookmark{
		UserID:       userID,
		CollectionID: collectionID,
		Title:        strings.TrimSpace(node.Title),
		URL:          url,
		Icon:         node.Icon,
	}
	if err := tx.CreateBookmark(bookmark); err != nil {
		return Result{}, fmt.Errorf("creating bookmark %q: %w", url, err)
	}

	result.BookmarksCreated = 1
	return result, nil
}

func importFolder(tx Store, userID uint, node bookmarkfile.Node, collectionID *uint) (Result, error) {
	result := Result{NodesProcessed: 1}

	// An empty trimmed name is still a valid collection name, the
	// folder is looked up and created like any other
	name := strings.TrimSpace(node.Title)

	collection, err := tx.FindCollectionByName(userID, name)
	if err != nil {
		return Result{}, fmt.Errorf("looking up collection %q: %w", name, err)
	}
	if collection == nil {
		collection = &entities.Collection{
			UserID: userID,
			Name:   name,
		}
		if err := tx.CreateCollection(collection); err != nil {
			return Result{}, fmt.Errorf("creating collection %q: %w", name, err)
		}
		result.CollectionsCreated = 1
	}

	children, err := importNodes(tx, userID, node.Children, &collection.ID)
	if err != nil {
		return Result{}, err
	}
	return result.add(children), nil
}
