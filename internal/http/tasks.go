package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/mrlokans/linkshelf/internal/scheduler"
	"github.com/mrlokans/linkshelf/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client    *tasks.Client
	linkCheck *scheduler.LinkCheckScheduler
}

// NewTasksController creates a new TasksController.
func NewTasksController(client *tasks.Client, linkCheck *scheduler.LinkCheckScheduler) *TasksController {
	return &TasksController{client: client, linkCheck: linkCheck}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "check_links",
			Description: "Probe stored bookmarks and flag dead links",
			Queue:       "check_links",
		},
		{
			Type:        "cleanup_orphan_tags",
			Description: "Remove tags no bookmark references anymore",
			Queue:       "cleanup_orphan_tags",
		},
		{
			Type:        "cleanup_audit_events",
			Description: "Remove audit events past the retention period",
			Queue:       "cleanup_audit_events",
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// Limit caps how many bookmarks one check_links run probes
	Limit int `json:"limit,omitempty"`
	// RetentionDays overrides the audit cleanup cutoff
	RetentionDays int `json:"retention_days,omitempty"`
}

// RunTask handles POST /api/tasks/:type and POST /api/tasks/:type/run
// Manually triggers a task of the specified type. Hyphenated type names
// are accepted as aliases for the underscore form.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := strings.ReplaceAll(c.Param("type"), "-", "_")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	var task backlite.Task
	switch taskType {
	case "check_links":
		task = tasks.CheckLinksTask{Limit: req.Limit}

	case "cleanup_orphan_tags":
		task = tasks.CleanupOrphanTagsTask{}

	case "cleanup_audit_events":
		task = tasks.CleanupAuditEventsTask{RetentionDays: req.RetentionDays}

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown task type: %s", taskType)})
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

// LinkCheckStatus handles GET /api/admin/linkcheck
// Reports whether the scheduled link check is running and when it fires next.
func (tc *TasksController) LinkCheckStatus(c *gin.Context) {
	if tc.linkCheck == nil {
		respondError(c, http.StatusServiceUnavailable, "link check scheduler is not enabled")
		return
	}

	resp := gin.H{
		"running": tc.linkCheck.IsRunning(),
	}
	if next := tc.linkCheck.GetNextRunTime(); next != nil {
		resp["next_run"] = next.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// RunLinkCheck handles POST /api/admin/linkcheck/run
// Fires a link check pass immediately, outside the cron schedule.
func (tc *TasksController) RunLinkCheck(c *gin.Context) {
	if tc.linkCheck == nil {
		respondError(c, http.StatusServiceUnavailable, "link check scheduler is not enabled")
		return
	}

	if err := tc.linkCheck.RunNow(); err != nil {
		respondInternalError(c, err, "run link check")
		return
	}

	respondAccepted(c, "link check started", nil)
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
