package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"gachahub/internal/catalog"
	"gachahub/logger"
	"gachahub/services/notifier"
	"gachahub/services/publisher"
)

// SiteConfigStore is the slice of site config persistence the scheduler
// needs.
type SiteConfigStore interface {
	FindEnabled() ([]catalog.SiteConfig, error)
	UpdateLastRun(siteName string, t time.Time) error
}

// Scheduler drives recurring scrape rounds and the aging sweep on cron
// schedules.
type Scheduler struct {
	cron      *cron.Cron
	runner    *Runner
	configs   SiteConfigStore
	ingest    Ingestor
	publisher publisher.Publisher
	notifier  notifier.Notifier

	scrapeCron string
	agingCron  string
	agingDays  int

	// now is injectable for tests
	now func() time.Time
}

// NewScheduler creates a scheduler. The publisher may be nil when no stream
// backend is configured.
func NewScheduler(runner *Runner, configs SiteConfigStore, ingest Ingestor, pub publisher.Publisher, notif notifier.Notifier, scrapeCron, agingCron string, agingDays int) *Scheduler {
	if notif == nil {
		notif = notifier.Noop{}
	}
	return &Scheduler{
		cron:       cron.New(),
		runner:     runner,
		configs:    configs,
		ingest:     ingest,
		publisher:  pub,
		notifier:   notif,
		scrapeCron: scrapeCron,
		agingCron:  agingCron,
		agingDays:  agingDays,
		now:        time.Now,
	}
}

// Start registers both triggers and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.scrapeCron, func() {
		s.RunScrapeRound(context.Background())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.agingCron, func() {
		s.RunAgingSweep()
	}); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Scheduler started: scrape %q, aging %q", s.scrapeCron, s.agingCron)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

// RunScrapeRound runs every enabled site in sequence, publishes the new
// items, and sends exactly one summary mail. One site failing does not stop
// the others. When no site is enabled, the round is skipped entirely and no
// mail is sent.
func (s *Scheduler) RunScrapeRound(ctx context.Context) {
	configs, err := s.configs.FindEnabled()
	if err != nil {
		logger.Error("Scrape round aborted: loading site configs: %v", err)
		return
	}
	if len(configs) == 0 {
		logger.Info("No enabled site configs, skipping scrape round")
		return
	}

	var newItems []catalog.Item
	for _, cfg := range configs {
		result, err := s.runner.RunSite(ctx, cfg.SiteName)
		if err != nil {
			logger.Warn("Skipping site %s: %v", cfg.SiteName, err)
			continue
		}

		if err := s.configs.UpdateLastRun(cfg.SiteName, s.now()); err != nil {
			logger.Error("Failed to record last run for %s: %v", cfg.SiteName, err)
		}

		s.publishNewItems(cfg.SiteName, result.NewItems)
		newItems = append(newItems, result.NewItems...)
	}

	if s.publisher != nil && len(newItems) > 0 {
		if err := s.publisher.TrimStreams(); err != nil {
			logger.Error("Failed to trim streams: %v", err)
		}
	}

	if err := s.notifier.SendNewItemsSummary(newItems); err != nil {
		logger.Error("Failed to send summary mail: %v", err)
	}

	logger.Info("Scrape round finished: %d sites, %d new items", len(configs), len(newItems))
}

func (s *Scheduler) publishNewItems(siteName string, items []catalog.Item) {
	if s.publisher == nil {
		return
	}
	for _, item := range items {
		if err := s.publisher.PublishNewItem(siteName, item); err != nil {
			logger.Error("Failed to publish item %d from %s: %v", item.ID, siteName, err)
		}
	}
}

// RunAgingSweep clears the new flag on items older than the configured
// threshold
func (s *Scheduler) RunAgingSweep() {
	cleared, err := s.ingest.AgeOff(s.agingDays)
	if err != nil {
		logger.Error("Aging sweep failed: %v", err)
		return
	}
	logger.Info("Aging sweep cleared %d items past %d days", cleared, s.agingDays)
}
