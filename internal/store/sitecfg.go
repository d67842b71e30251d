package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"gachahub/internal/catalog"
	errs "gachahub/pkg/errors"
)

// SiteConfigStore persists scrape target configurations
type SiteConfigStore struct {
	db *sql.DB
}

// NewSiteConfigStore creates a site config store on the given database
func NewSiteConfigStore(db *sql.DB) *SiteConfigStore {
	return &SiteConfigStore{db: db}
}

// FindEnabled returns all enabled site configs
func (s *SiteConfigStore) FindEnabled() ([]catalog.SiteConfig, error) {
	rows, err := s.db.Query(`SELECT id, site_name, site_url, schedule, enabled, last_run_at
		FROM site_configs WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanSiteConfigs(rows)
}

// FindByName returns the config with the given site name, or nil when absent
func (s *SiteConfigStore) FindByName(siteName string) (*catalog.SiteConfig, error) {
	row := s.db.QueryRow(`SELECT id, site_name, site_url, schedule, enabled, last_run_at
		FROM site_configs WHERE site_name = ?`, siteName)

	cfg, err := scanSiteConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save creates or updates a site config. The schedule expression is
// validated here, at configuration time, so a bad expression never reaches
// the scheduler.
func (s *SiteConfigStore) Save(cfg *catalog.SiteConfig) error {
	if err := ValidateSchedule(cfg.Schedule); err != nil {
		return err
	}

	if cfg.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO site_configs (site_name, site_url, schedule, enabled, last_run_at)
			VALUES (?, ?, ?, ?, ?)`,
			cfg.SiteName, cfg.SiteURL, cfg.Schedule, cfg.Enabled, nullableTime(cfg.LastRunAt, timeFormat))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return errs.NewConfiguration("duplicate site name: "+cfg.SiteName, err)
			}
			return err
		}
		cfg.ID, err = res.LastInsertId()
		return err
	}

	_, err := s.db.Exec(`UPDATE site_configs SET site_name = ?, site_url = ?, schedule = ?, enabled = ?, last_run_at = ?
		WHERE id = ?`,
		cfg.SiteName, cfg.SiteURL, cfg.Schedule, cfg.Enabled, nullableTime(cfg.LastRunAt, timeFormat), cfg.ID)
	return err
}

// UpdateLastRun records when a site was last scraped
func (s *SiteConfigStore) UpdateLastRun(siteName string, t time.Time) error {
	_, err := s.db.Exec(`UPDATE site_configs SET last_run_at = ? WHERE site_name = ?`,
		t.Format(timeFormat), siteName)
	return err
}

// ValidateSchedule checks a cron schedule expression
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return errs.NewConfiguration("invalid schedule expression: "+expr, err)
	}
	return nil
}

func scanSiteConfig(row rowScanner) (catalog.SiteConfig, error) {
	var cfg catalog.SiteConfig
	var lastRunAt sql.NullString

	err := row.Scan(&cfg.ID, &cfg.SiteName, &cfg.SiteURL, &cfg.Schedule, &cfg.Enabled, &lastRunAt)
	if err != nil {
		return catalog.SiteConfig{}, err
	}
	cfg.LastRunAt = parseNullableTime(lastRunAt, timeFormat)
	return cfg, nil
}

func scanSiteConfigs(rows *sql.Rows) ([]catalog.SiteConfig, error) {
	defer rows.Close()
	var configs []catalog.SiteConfig
	for rows.Next() {
		cfg, err := scanSiteConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}
