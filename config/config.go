package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	// Storage
	DatabasePath string

	// Memcache configuration (per-site fetch block cache)
	MemcacheAddr string

	// Redis configuration (new-item stream, optional)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Notification mail
	NotificationEnabled bool
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	MailFrom            string
	MailRecipients      []string

	// Scrape targets
	BandaiURL         string
	TakaraTomyBaseURL string

	// Run bounds
	MaxItemsPerRun  int
	DetailDelayMin  time.Duration
	DetailDelayMax  time.Duration
	FetchBlockTime  time.Duration
	PageLoadTimeout time.Duration

	// Schedules
	ScrapeCron         string
	AgingCron          string
	AgingThresholdDays int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	maxItems, _ := strconv.Atoi(getEnv("MAX_ITEMS_PER_RUN", "50"))
	delayMin, _ := strconv.Atoi(getEnv("DETAIL_DELAY_MIN_MS", "500"))
	delayMax, _ := strconv.Atoi(getEnv("DETAIL_DELAY_MAX_MS", "1500"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "500"))
	pageTimeout, _ := strconv.Atoi(getEnv("PAGE_LOAD_TIMEOUT_SECONDS", "15"))
	agingDays, _ := strconv.Atoi(getEnv("AGING_THRESHOLD_DAYS", "30"))

	return Config{
		DatabasePath:         getEnv("DATABASE_PATH", "gachahub.db"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "newitems"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLen,
		NotificationEnabled:  getEnv("NOTIFICATION_ENABLED", "false") == "true",
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             smtpPort,
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		MailFrom:             getEnv("MAIL_FROM", "noreply@gachahub.local"),
		MailRecipients:       splitList(getEnv("MAIL_RECIPIENTS", "")),
		BandaiURL:            getEnv("BANDAI_URL", "https://gashapon.jp/products/"),
		TakaraTomyBaseURL:    getEnv("TAKARATOMY_BASE_URL", "https://www.takaratomy-arts.co.jp"),
		MaxItemsPerRun:       maxItems,
		DetailDelayMin:       time.Duration(delayMin) * time.Millisecond,
		DetailDelayMax:       time.Duration(delayMax) * time.Millisecond,
		FetchBlockTime:       time.Duration(blockTime) * time.Second,
		PageLoadTimeout:      time.Duration(pageTimeout) * time.Second,
		ScrapeCron:           getEnv("SCRAPE_CRON", "0 6 * * *"),
		AgingCron:            getEnv("AGING_CRON", "0 0 * * *"),
		AgingThresholdDays:   agingDays,
		Environment:          getEnv("GACHAHUB_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.MaxItemsPerRun <= 0 {
		return fmt.Errorf("max items per run must be positive, got %d", c.MaxItemsPerRun)
	}
	if c.DetailDelayMin < 0 || c.DetailDelayMax < c.DetailDelayMin {
		return fmt.Errorf("invalid detail delay range [%s, %s]", c.DetailDelayMin, c.DetailDelayMax)
	}
	if c.AgingThresholdDays <= 0 {
		return fmt.Errorf("aging threshold must be positive, got %d days", c.AgingThresholdDays)
	}
	if c.RedisAddr != "" {
		if c.RedisStreamCount < 1 {
			return fmt.Errorf("redis stream count must be at least 1, got %d", c.RedisStreamCount)
		}
		if c.RedisStreamMaxLength < 1 {
			return fmt.Errorf("redis stream max length must be at least 1, got %d", c.RedisStreamMaxLength)
		}
	}
	if _, err := cron.ParseStandard(c.ScrapeCron); err != nil {
		return fmt.Errorf("invalid scrape cron expression %q: %w", c.ScrapeCron, err)
	}
	if _, err := cron.ParseStandard(c.AgingCron); err != nil {
		return fmt.Errorf("invalid aging cron expression %q: %w", c.AgingCron, err)
	}
	if c.NotificationEnabled && len(c.MailRecipients) == 0 {
		return fmt.Errorf("notification enabled but no mail recipients configured")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated list, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
