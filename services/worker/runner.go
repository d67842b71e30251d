// Package worker orchestrates site runs: it wires extractors, sessions,
// ingestion and run logging together, and schedules recurring rounds.
package worker

import (
	"context"
	"fmt"
	"time"

	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
	"gachahub/internal/scraper"
	"gachahub/logger"
	errs "gachahub/pkg/errors"
)

// Ingestor is the slice of the ingestion pipeline the worker needs.
type Ingestor interface {
	Ingest(raw catalog.RawItem) (catalog.Item, bool, error)
	AgeOff(thresholdDays int) (int, error)
}

// RunLogStore persists run outcomes.
type RunLogStore interface {
	Save(log *catalog.RunLog) error
	FindRecent(n int) ([]catalog.RunLog, error)
}

// Result is the outcome of one site run.
type Result struct {
	// TotalFound is the number of candidate items extracted
	TotalFound int

	// NewItems are the items ingested as genuinely new this run
	NewItems []catalog.Item

	// Status is RunStatusSuccess or RunStatusFailure
	Status string

	// Err carries the run-aborting failure when Status is FAILURE
	Err error
}

// NewCount returns how many items this run ingested as new
func (r Result) NewCount() int {
	return len(r.NewItems)
}

// Runner executes single site runs.
type Runner struct {
	registry *scraper.Registry
	ingest   Ingestor
	runLogs  RunLogStore
	sessions fetch.Factory
}

// NewRunner creates a runner over the given collaborators
func NewRunner(registry *scraper.Registry, ingest Ingestor, runLogs RunLogStore, sessions fetch.Factory) *Runner {
	return &Runner{
		registry: registry,
		ingest:   ingest,
		runLogs:  runLogs,
		sessions: sessions,
	}
}

// RunSite runs one full scrape of the named site. Exactly one run log entry
// is written no matter how the run ends. A failing run is reported through
// the result's Status and Err, not the error return; the error return is
// reserved for a site name no extractor is registered for.
func (r *Runner) RunSite(ctx context.Context, siteName string) (Result, error) {
	extractor, ok := r.registry.Lookup(siteName)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", errs.ErrUnsupportedSite, siteName)
	}

	logger.Info("Starting run for site %s", siteName)
	result := Result{Status: catalog.RunStatusSuccess}

	defer func() {
		entry := catalog.RunLog{TargetSite: siteName, Status: result.Status}
		items := result.TotalFound
		if result.Status == catalog.RunStatusFailure {
			items = 0
		}
		entry.ItemsFound = &items
		if result.Err != nil {
			entry.ErrorMessage = result.Err.Error()
		}
		if err := r.runLogs.Save(&entry); err != nil {
			logger.Error("Failed to write run log for %s: %v", siteName, err)
		}
	}()

	session, err := r.sessions.Acquire()
	if err != nil {
		result.Status = catalog.RunStatusFailure
		result.Err = errs.NewRun(siteName, "session acquisition failed", err)
		logger.Error("Run for %s failed: %v", siteName, result.Err)
		return result, nil
	}
	defer session.Close()

	raws, err := extractor.Extract(ctx, session)
	if err != nil {
		result.Status = catalog.RunStatusFailure
		result.Err = err
		logger.Error("Run for %s failed: %v", siteName, err)
		return result, nil
	}

	result.TotalFound = len(raws)
	for _, raw := range raws {
		item, wasNew, err := r.ingest.Ingest(raw)
		if err != nil {
			logger.Error("Skipping item %q from %s: %v", raw.Name, siteName, err)
			continue
		}
		if wasNew {
			result.NewItems = append(result.NewItems, item)
		}
	}

	logger.Info("Run for %s finished: %d found, %d new", siteName, result.TotalFound, result.NewCount())
	return result, nil
}

// Status describes the runner's current state for status queries.
type Status struct {
	Available      bool       `json:"available"`
	SupportedSites []string   `json:"supported_sites"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
	LastStatus     string     `json:"last_status,omitempty"`
}

// Status reports the supported sites and the most recent run outcome
func (r *Runner) Status() (Status, error) {
	status := Status{
		Available:      true,
		SupportedSites: r.registry.Sites(),
	}

	logs, err := r.runLogs.FindRecent(1)
	if err != nil {
		return Status{}, fmt.Errorf("load run history: %w", err)
	}
	if len(logs) > 0 {
		executed := logs[0].ExecutedAt
		status.LastExecutedAt = &executed
		status.LastStatus = logs[0].Status
	}
	return status, nil
}
