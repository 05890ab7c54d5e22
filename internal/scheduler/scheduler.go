// Package scheduler runs recurring scrapes of the configured subreddits on
// a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/scrape"
)

// ScrapeFunc executes one scrape run for a subreddit.
type ScrapeFunc func(ctx context.Context, opts scrape.Options) error

// Scheduler triggers scrapes of each configured subreddit on a shared cron
// schedule. Overlapping runs for the same subreddit are skipped.
type Scheduler struct {
	cron       *cron.Cron
	run        ScrapeFunc
	subreddits []string
	pages      int
	pageLimit  int
	log        logger.Interface

	mu      sync.Mutex
	running map[string]bool
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. The run function is invoked once per subreddit
// per schedule tick.
func New(run ScrapeFunc, subreddits []string, pages, pageLimit int, log logger.Interface) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		run:        run,
		subreddits: subreddits,
		pages:      pages,
		pageLimit:  pageLimit,
		log:        log,
		running:    make(map[string]bool),
		entries:    make(map[string]cron.EntryID),
	}
}

// Start registers one cron entry per subreddit and starts the cron loop.
// spec is a standard 5-field cron expression.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if len(s.subreddits) == 0 {
		return fmt.Errorf("no subreddits configured")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, subreddit := range s.subreddits {
		sub := subreddit
		entryID, err := s.cron.AddFunc(spec, func() {
			s.trigger(sub)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", sub, err)
		}
		s.mu.Lock()
		s.entries[sub] = entryID
		s.mu.Unlock()
		s.log.Info("Scheduled subreddit", "subreddit", sub, "schedule", spec)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", "subreddits", len(s.subreddits), "schedule", spec)
	return nil
}

// Stop halts the cron loop and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Scheduler stopped")
}

// trigger runs one scrape unless the same subreddit is still in flight.
func (s *Scheduler) trigger(subreddit string) {
	s.mu.Lock()
	if s.running[subreddit] {
		s.mu.Unlock()
		s.log.Warn("Skipping scrape, previous run still in flight", "subreddit", subreddit)
		return
	}
	s.running[subreddit] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[subreddit] = false
		s.mu.Unlock()
	}()

	s.log.Info("Cron triggered scrape", "subreddit", subreddit)
	err := s.run(s.ctx, scrape.Options{
		Subreddit: subreddit,
		Pages:     s.pages,
		PageLimit: s.pageLimit,
	})
	if err != nil {
		s.log.Error("Scheduled scrape failed", "subreddit", subreddit, "error", err)
	}
}
