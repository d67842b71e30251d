package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "gachahub.db", config.DatabasePath)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, 50, config.MaxItemsPerRun)
	assert.Equal(t, 500*time.Millisecond, config.DetailDelayMin)
	assert.Equal(t, 1500*time.Millisecond, config.DetailDelayMax)
	assert.Equal(t, "0 6 * * *", config.ScrapeCron)
	assert.Equal(t, "0 0 * * *", config.AgingCron)
	assert.Equal(t, 30, config.AgingThresholdDays)
	assert.Equal(t, "https://gashapon.jp/products/", config.BandaiURL)

	// Test with environment variables
	os.Setenv("DATABASE_PATH", "/tmp/test.db")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("MAX_ITEMS_PER_RUN", "10")
	os.Setenv("DETAIL_DELAY_MIN_MS", "100")
	os.Setenv("DETAIL_DELAY_MAX_MS", "200")
	os.Setenv("MAIL_RECIPIENTS", "a@example.com, b@example.com")

	config = LoadConfig()
	assert.Equal(t, "/tmp/test.db", config.DatabasePath)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 10, config.MaxItemsPerRun)
	assert.Equal(t, 100*time.Millisecond, config.DetailDelayMin)
	assert.Equal(t, 200*time.Millisecond, config.DetailDelayMax)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, config.MailRecipients)

	// Clean up
	os.Unsetenv("DATABASE_PATH")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("MAX_ITEMS_PER_RUN")
	os.Unsetenv("DETAIL_DELAY_MIN_MS")
	os.Unsetenv("DETAIL_DELAY_MAX_MS")
	os.Unsetenv("MAIL_RECIPIENTS")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	invalid := config
	invalid.MaxItemsPerRun = 0
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.DetailDelayMin = 2 * time.Second
	invalid.DetailDelayMax = 1 * time.Second
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.DatabasePath = ""
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.NotificationEnabled = true
	invalid.MailRecipients = nil
	assert.Error(t, invalid.Validate())

	// A zero stream count would panic the shard draw at publish time
	invalid = config
	invalid.RedisAddr = "localhost:6379"
	invalid.RedisStreamCount = 0
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.RedisAddr = "localhost:6379"
	invalid.RedisStreamMaxLength = 0
	assert.Error(t, invalid.Validate())

	// Stream settings are only checked when a Redis address is configured
	disabled := config
	disabled.RedisAddr = ""
	disabled.RedisStreamCount = 0
	assert.NoError(t, disabled.Validate())

	invalid = config
	invalid.ScrapeCron = "not a cron"
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.AgingCron = "61 * * * *"
	assert.Error(t, invalid.Validate())
}
