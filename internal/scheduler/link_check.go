package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/config"
	"github.com/mrlokans/linkshelf/internal/database/settings"
	"github.com/mrlokans/linkshelf/internal/entities"
	"github.com/mrlokans/linkshelf/internal/linkcheck"
	"github.com/mrlokans/linkshelf/internal/tasks"
)

// LinkCheckScheduler periodically probes saved bookmarks for dead links.
type LinkCheckScheduler struct {
	store        tasks.LinkCheckStore
	settingsRepo *settings.Repository
	auditService *audit.Service
	checker      *linkcheck.Checker
	cfg          config.LinkCheck

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewLinkCheckScheduler creates a new scheduler instance
func NewLinkCheckScheduler(store tasks.LinkCheckStore, settingsRepo *settings.Repository, auditService *audit.Service, cfg config.LinkCheck) *LinkCheckScheduler {
	return &LinkCheckScheduler{
		store:        store,
		settingsRepo: settingsRepo,
		auditService: auditService,
		checker:      linkcheck.NewChecker(cfg.Timeout),
		cfg:          cfg,
		cron:         cron.New(cron.WithParser(cronParser())),
	}
}

// Start begins the scheduler if link checking is enabled
func (s *LinkCheckScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.enabled() {
		log.Printf("Link check scheduler: disabled")
		return nil
	}

	schedule := s.schedule()
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runCheck()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule link check job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(schedule)
	log.Printf("Link check scheduler: started with schedule '%s' (%s). Next run: %v",
		schedule, GetCronDescription(schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *LinkCheckScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Link check scheduler: stopped")
}

// RunNow triggers an immediate check
func (s *LinkCheckScheduler) RunNow() error {
	go s.runCheck()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *LinkCheckScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next check will occur
func (s *LinkCheckScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// enabled reads the database override, falling back to the env config.
func (s *LinkCheckScheduler) enabled() bool {
	if s.settingsRepo == nil {
		return s.cfg.Enabled
	}
	value, err := s.settingsRepo.GetSettingValue(entities.SettingKeyLinkCheckEnabled, strconv.FormatBool(s.cfg.Enabled))
	if err != nil {
		return s.cfg.Enabled
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return s.cfg.Enabled
	}
	return enabled
}

// schedule reads the database override, falling back to the env config.
func (s *LinkCheckScheduler) schedule() string {
	if s.settingsRepo == nil {
		return s.cfg.Schedule
	}
	value, err := s.settingsRepo.GetSettingValue(entities.SettingKeyLinkCheckSchedule, s.cfg.Schedule)
	if err != nil || value == "" {
		return s.cfg.Schedule
	}
	return value
}

// runCheck performs the actual link check pass
func (s *LinkCheckScheduler) runCheck() {
	log.Printf("Link check: starting")
	startTime := time.Now()

	var auditor tasks.LinkCheckAuditor
	if s.auditService != nil {
		auditor = s.auditService
	}
	processor := tasks.CheckLinksProcessor(s.store, s.checker, auditor)
	err := processor(context.Background(), tasks.CheckLinksTask{})

	duration := time.Since(startTime)
	if err != nil {
		errMsg := fmt.Sprintf("Link check failed after %v: %v", duration.Round(time.Millisecond), err)
		log.Printf("%s", errMsg)
		s.setStatus("failed", errMsg)
		return
	}

	successMsg := fmt.Sprintf("Link check completed in %v", duration.Round(time.Millisecond))
	log.Printf("%s", successMsg)
	s.setStatus("success", successMsg)
}

func (s *LinkCheckScheduler) setStatus(status, message string) {
	if s.settingsRepo == nil {
		return
	}
	_ = s.settingsRepo.SetSetting(entities.SettingKeyLinkCheckLastAt, time.Now().Format(time.RFC3339))
	_ = s.settingsRepo.SetSetting(entities.SettingKeyLinkCheckLastStatus, status)
	_ = s.settingsRepo.SetSetting(entities.SettingKeyLinkCheckLastMessage, message)
}
