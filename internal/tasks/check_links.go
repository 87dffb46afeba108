package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/linkshelf/internal/entities"
	"github.com/mrlokans/linkshelf/internal/linkcheck"
)

// LinkCheckStore provides access to bookmarks due for a liveness probe.
type LinkCheckStore interface {
	ListForLinkCheck(checkedBefore time.Time, limit int) ([]entities.Bookmark, error)
	MarkLinkStatus(id uint, dead bool, checkedAt time.Time) error
}

// LinkCheckAuditor records the outcome of a link check run.
type LinkCheckAuditor interface {
	LogLinkCheck(checked, dead int, err error)
}

// LinkProber probes a single URL.
type LinkProber interface {
	Check(ctx context.Context, url string) linkcheck.Result
}

// CheckLinksTask probes saved bookmarks and marks dead links.
type CheckLinksTask struct {
	// Limit caps how many bookmarks a single run probes. Default: 200
	Limit int `json:"limit"`
	// RecheckAfterHours skips bookmarks checked more recently. Default: 168 (one week)
	RecheckAfterHours int `json:"recheck_after_hours"`
}

// Config returns the queue configuration for link check tasks.
func (t CheckLinksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "check_links",
		MaxAttempts: 1,
		Backoff:     5 * time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CheckLinksProcessor creates a processor function for CheckLinksTask.
func CheckLinksProcessor(store LinkCheckStore, prober LinkProber, auditor LinkCheckAuditor) backlite.QueueProcessor[CheckLinksTask] {
	return func(ctx context.Context, task CheckLinksTask) error {
		if store == nil {
			return fmt.Errorf("link check store not configured")
		}
		if prober == nil {
			return fmt.Errorf("link prober not configured")
		}

		limit := task.Limit
		if limit <= 0 {
			limit = 200
		}
		recheckAfter := task.RecheckAfterHours
		if recheckAfter <= 0 {
			recheckAfter = 168
		}
		cutoff := time.Now().Add(-time.Duration(recheckAfter) * time.Hour)

		bookmarks, err := store.ListForLinkCheck(cutoff, limit)
		if err != nil {
			if auditor != nil {
				auditor.LogLinkCheck(0, 0, err)
			}
			return fmt.Errorf("list bookmarks for link check: %w", err)
		}

		if len(bookmarks) == 0 {
			log.Printf("[TASK] Link check: no bookmarks due")
			return nil
		}

		checked := 0
		dead := 0
		for _, bookmark := range bookmarks {
			if ctx.Err() != nil {
				break
			}

			result := prober.Check(ctx, bookmark.URL)
			if markErr := store.MarkLinkStatus(bookmark.ID, result.Dead, time.Now()); markErr != nil {
				log.Printf("[TASK ERROR] Link check: failed to mark bookmark %d: %v", bookmark.ID, markErr)
				continue
			}

			checked++
			if result.Dead {
				dead++
			}
		}

		if auditor != nil {
			auditor.LogLinkCheck(checked, dead, nil)
		}

		log.Printf("[TASK] Link check: probed %d bookmarks, %d dead", checked, dead)
		return nil
	}
}

// NewCheckLinksQueue creates a backlite queue for link check tasks.
func NewCheckLinksQueue(store LinkCheckStore, prober LinkProber, auditor LinkCheckAuditor) backlite.Queue {
	return backlite.NewQueue(CheckLinksProcessor(store, prober, auditor))
}
