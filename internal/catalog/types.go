package catalog

import "time"

// Supported site names. These are the keys used in site configs and run logs.
const (
	SiteBandai     = "BANDAI_GASHAPON"
	SiteTakaraTomy = "TAKARA_TOMY_ARTS"
)

// Manufacturer names as stored on catalog items.
const (
	ManufacturerBandai     = "BANDAI"
	ManufacturerTakaraTomy = "TAKARA_TOMY"
)

// Run log statuses.
const (
	RunStatusSuccess = "SUCCESS"
	RunStatusFailure = "FAILURE"
)

// RawItem is an unvalidated extraction result from a single scraped page,
// prior to dedup/upsert. Empty strings and nil pointers mean "not found".
type RawItem struct {
	Name         string
	Manufacturer string
	ImageURL     string
	Price        *int
	ReleaseDate  *time.Time
	Description  string
	LineupInfo   string
	SourceURL    string
}

// Item is a durably stored product record.
type Item struct {
	ID           int64      `json:"id"`
	ProductName  string     `json:"product_name"`
	Manufacturer string     `json:"manufacturer"`
	ImageURL     string     `json:"image_url,omitempty"`
	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	Price        *int       `json:"price,omitempty"`
	Description  string     `json:"description,omitempty"`
	LineupInfo   string     `json:"lineup_info,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
	IsNew        bool       `json:"is_new"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SiteConfig describes one scrape target. Read by the scheduler and the
// runner; edited through configuration management.
type SiteConfig struct {
	ID        int64      `json:"id"`
	SiteName  string     `json:"site_name"`
	SiteURL   string     `json:"site_url"`
	Schedule  string     `json:"schedule"`
	Enabled   bool       `json:"enabled"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// RunLog records the outcome of a single site run. Append-only, written
// exactly once per run regardless of outcome.
type RunLog struct {
	ID           int64     `json:"id"`
	TargetSite   string    `json:"target_site"`
	Status       string    `json:"status"`
	ItemsFound   *int      `json:"items_found,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ExecutedAt   time.Time `json:"executed_at"`
}
