package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/bookmarkfile"
	"github.com/mrlokans/linkshelf/internal/entities"
	"github.com/mrlokans/linkshelf/internal/importers"
)

// Default maximum size for uploaded bookmark files (5 MB)
const defaultMaxImportFileSize = 5 * 1024 * 1024

// ImportSessionStore defines database operations for import session tracking.
type ImportSessionStore interface {
	CreateSession(userID uint, source entities.ImportSource) (*entities.ImportSession, error)
	CompleteSession(session *entities.ImportSession) error
	FailSession(session *entities.ImportSession, cause error) error
	GetSessionByID(id uint) (*entities.ImportSession, error)
	GetSessionsForUser(userID uint, limit int) ([]entities.ImportSession, error)
}

// ImportController handles bookmark file imports and import history.
type ImportController struct {
	reconciler   *importers.Reconciler
	sessions     ImportSessionStore
	auditService *audit.Service
	archiver     *audit.Archiver
	maxFileSize  int64
}

func NewImportController(reconciler *importers.Reconciler, sessions ImportSessionStore, auditService *audit.Service, archiver *audit.Archiver, maxFileSize int64) *ImportController {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxImportFileSize
	}
	return &ImportController{
		reconciler:   reconciler,
		sessions:     sessions,
		auditService: auditService,
		archiver:     archiver,
		maxFileSize:  maxFileSize,
	}
}

// ImportRequest is the JSON request body for pre-parsed node imports
type ImportRequest struct {
	Nodes []bookmarkfile.Node `json:"nodes"`
}

// ImportResponse reports the outcome of a completed import.
// Count mirrors BookmarksCreated for clients that only care about totals.
type ImportResponse struct {
	Success            bool `json:"success"`
	Count              int  `json:"count"`
	SessionID          uint `json:"session_id"`
	NodesProcessed     int  `json:"nodes_processed"`
	BookmarksCreated   int  `json:"bookmarks_created"`
	CollectionsCreated int  `json:"collections_created"`
	LinksSkipped       int  `json:"links_skipped"`
}

// Import handles POST /api/bookmarks/import.
//
// Two payload shapes are accepted: a multipart upload with a
// bookmarks_file field holding a browser HTML export, or a JSON body
// with a pre-parsed node forest.
func (ic *ImportController) Import(c *gin.Context) {
	var (
		nodes  []bookmarkfile.Node
		raw    []byte
		source entities.ImportSource
		err    error
	)

	if isMultipart(c) {
		nodes, raw, source, err = ic.parseMultipart(c)
	} else {
		source = entities.ImportSourceJSONNodes
		nodes, raw, err = parseNodesBody(c)
	}
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if len(nodes) == 0 {
		respondBadRequest(c, "no bookmarks found in payload")
		return
	}

	if err := bookmarkfile.ValidateAll(nodes); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID := GetUserID(c)
	session, err := ic.sessions.CreateSession(userID, source)
	if err != nil {
		respondInternalError(c, err, "create import session")
		return
	}

	result, err := ic.reconciler.Import(userID, nodes)
	if err != nil {
		ic.failImport(session, raw, source, err)
		respondInternalError(c, err, "import bookmarks")
		return
	}

	session.NodesProcessed = result.NodesProcessed
	session.BookmarksCreated = result.BookmarksCreated
	session.CollectionsCreated = result.CollectionsCreated
	if err := ic.sessions.CompleteSession(session); err != nil {
		log.Printf("Failed to complete import session %d: %v", session.ID, err)
	}

	if ic.auditService != nil {
		description := fmt.Sprintf("Imported %d nodes", result.NodesProcessed)
		if browser := c.PostForm("browser"); browser != "" {
			description = fmt.Sprintf("Imported %d nodes (%s export)", result.NodesProcessed, browser)
		}
		ic.auditService.LogImport(userID, source, description,
			result.BookmarksCreated, result.CollectionsCreated, result.LinksSkipped, nil)
	}

	c.JSON(http.StatusOK, ImportResponse{
		Success:            true,
		Count:              result.BookmarksCreated,
		SessionID:          session.ID,
		NodesProcessed:     result.NodesProcessed,
		BookmarksCreated:   result.BookmarksCreated,
		CollectionsCreated: result.CollectionsCreated,
		LinksSkipped:       result.LinksSkipped,
	})
}

// failImport records a failed session and archives the payload so the
// import can be replayed after a fix.
func (ic *ImportController) failImport(session *entities.ImportSession, raw []byte, source entities.ImportSource, cause error) {
	if err := ic.sessions.FailSession(session, cause); err != nil {
		log.Printf("Failed to mark import session %d as failed: %v", session.ID, err)
	}

	if ic.archiver != nil && len(raw) > 0 {
		ext := ".json"
		if source == entities.ImportSourceBrowserHTML {
			ext = ".html"
		}
		if path, err := ic.archiver.SavePayload(raw, ext); err != nil {
			log.Printf("Failed to archive import payload: %v", err)
		} else {
			log.Printf("Archived failed import payload to %s", path)
		}
	}

	if ic.auditService != nil {
		ic.auditService.LogImport(session.UserID, source, "Import failed", 0, 0, 0, cause)
	}
}

// parseMultipart handles a multipart form holding either a bookmarks_file
// upload (browser HTML export) or a bookmarks field (JSON node array).
// The raw bytes are returned alongside the nodes for failure archiving.
func (ic *ImportController) parseMultipart(c *gin.Context) ([]bookmarkfile.Node, []byte, entities.ImportSource, error) {
	file, header, err := c.Request.FormFile("bookmarks_file")
	if err != nil {
		if payload := c.PostForm("bookmarks"); payload != "" {
			var nodes []bookmarkfile.Node
			if err := json.Unmarshal([]byte(payload), &nodes); err != nil {
				return nil, []byte(payload), entities.ImportSourceJSONNodes, fmt.Errorf("invalid bookmarks field: %v", err)
			}
			return nodes, []byte(payload), entities.ImportSourceJSONNodes, nil
		}
		return nil, nil, entities.ImportSourceBrowserHTML, fmt.Errorf("bookmarks_file not provided")
	}
	defer file.Close()

	source := entities.ImportSourceBrowserHTML
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".html" && ext != ".htm" {
		return nil, nil, source, fmt.Errorf("unsupported file type %q, expected an .html export", ext)
	}

	if header.Size > ic.maxFileSize {
		return nil, nil, source, fmt.Errorf("file too large (max %d MB)", ic.maxFileSize/(1024*1024))
	}

	// Copy with size limit, the multipart header size is client-supplied
	var buf bytes.Buffer
	written, err := io.Copy(&buf, io.LimitReader(file, ic.maxFileSize+1))
	if err != nil {
		return nil, nil, source, fmt.Errorf("failed to read file")
	}
	if written > ic.maxFileSize {
		return nil, nil, source, fmt.Errorf("file too large (max %d MB)", ic.maxFileSize/(1024*1024))
	}

	raw := buf.Bytes()
	nodes, err := bookmarkfile.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, raw, source, err
	}
	return nodes, raw, source, nil
}

// parseNodesBody decodes a JSON node forest from the request body.
func parseNodesBody(c *gin.Context) ([]bookmarkfile.Node, []byte, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read request body")
	}

	var req ImportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, raw, fmt.Errorf("invalid JSON body: %v", err)
	}
	return req.Nodes, raw, nil
}

func isMultipart(c *gin.Context) bool {
	contentType := c.ContentType()
	return contentType == "multipart/form-data"
}

// ListSessions returns recent import sessions for the current user
// GET /api/imports
func (ic *ImportController) ListSessions(c *gin.Context) {
	limit, _ := parsePagination(c, 50)

	sessions, err := ic.sessions.GetSessionsForUser(GetUserID(c), limit)
	if err != nil {
		respondInternalError(c, err, "list import sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetSession returns a single import session
// GET /api/imports/:id
func (ic *ImportController) GetSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := ic.sessions.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "import session")
			return
		}
		respondInternalError(c, err, "get import session")
		return
	}

	if session.UserID != GetUserID(c) {
		respondNotFound(c, "import session")
		return
	}

	c.JSON(http.StatusOK, session)
}
