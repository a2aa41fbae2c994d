// Package scheduler enqueues periodic maintenance tasks on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jobdesk/jobdesk/internal/tasks"
)

// CleanupScheduler periodically enqueues the audit-retention and
// upload-sweep tasks. The tasks themselves run on the queue's workers;
// the scheduler only submits them.
type CleanupScheduler struct {
	client        *tasks.Client
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a scheduler submitting cleanup tasks on the
// given five-field cron schedule.
func NewCleanupScheduler(client *tasks.Client, schedule string, retentionDays int) *CleanupScheduler {
	return &CleanupScheduler{
		client:        client,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Cleanup scheduler: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running submission to
// complete.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Cleanup scheduler: stopped")
}

// RunNow submits the cleanup tasks immediately.
func (s *CleanupScheduler) RunNow() {
	go s.enqueueCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will be enqueued.
func (s *CleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CleanupScheduler) enqueueCleanup() {
	if _, err := s.client.Add(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}).Save(); err != nil {
		log.Printf("Cleanup scheduler: failed to enqueue audit cleanup: %v", err)
	}
	if _, err := s.client.Add(tasks.CleanupUploadsTask{}).Save(); err != nil {
		log.Printf("Cleanup scheduler: failed to enqueue upload cleanup: %v", err)
	}
}
