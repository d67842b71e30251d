package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gachahub/config"
	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
	"gachahub/internal/ingest"
	"gachahub/internal/scraper"
	"gachahub/internal/store"
	"gachahub/logger"
	"gachahub/services/cache"
	"gachahub/services/notifier"
	"gachahub/services/publisher"
	"gachahub/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("database", cfg.DatabasePath).
		Str("scrape_cron", cfg.ScrapeCron).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Build the extraction pipeline
	limits := scraper.Limits{
		MaxItems: cfg.MaxItemsPerRun,
		DelayMin: cfg.DetailDelayMin,
		DelayMax: cfg.DetailDelayMax,
	}
	registry := scraper.NewRegistry(
		scraper.NewBandaiExtractor(cfg.BandaiURL, limits),
		scraper.NewTakaraTomyExtractor(cfg.TakaraTomyBaseURL, limits),
	)

	log.Info().
		Strs("sites", registry.Sites()).
		Msg("Registered extractors")

	ingestService := ingest.NewService(store.NewCatalogStore(services.DB))
	runner := worker.NewRunner(
		registry,
		ingestService,
		store.NewRunLogStore(services.DB),
		&fetch.HTTPFactory{Cache: services.Cache, BlockTime: cfg.FetchBlockTime, Timeout: cfg.PageLoadTimeout},
	)

	scheduler := worker.NewScheduler(
		runner,
		store.NewSiteConfigStore(services.DB),
		ingestService,
		services.Publisher,
		services.Notifier,
		cfg.ScrapeCron,
		cfg.AgingCron,
		cfg.AgingThresholdDays,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")
	cancel()

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	scheduler.Stop()
}

// Services holds all the initialized services
type Services struct {
	DB        *sql.DB
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Notifier  notifier.Notifier
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Open the database and ensure the schema exists
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	services.DB = db

	logger.Info("Opened database at %s", cfg.DatabasePath)

	if err := seedSiteConfigs(db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed site configs: %w", err)
	}

	// Initialize cache service
	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher when a Redis address is configured
	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Initialize notifier
	if cfg.NotificationEnabled {
		services.Notifier = notifier.NewEmailNotifier(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.MailFrom,
			cfg.MailRecipients,
		)
		logger.Info("Mail notification enabled for %d recipients", len(cfg.MailRecipients))
	} else {
		services.Notifier = notifier.Noop{}
	}

	return services, nil
}

// seedSiteConfigs inserts the default site configs on first start
func seedSiteConfigs(db *sql.DB, cfg *config.Config) error {
	configStore := store.NewSiteConfigStore(db)

	defaults := []catalog.SiteConfig{
		{SiteName: catalog.SiteBandai, SiteURL: cfg.BandaiURL, Schedule: cfg.ScrapeCron, Enabled: true},
		{SiteName: catalog.SiteTakaraTomy, SiteURL: cfg.TakaraTomyBaseURL, Schedule: cfg.ScrapeCron, Enabled: true},
	}

	for _, def := range defaults {
		existing, err := configStore.FindByName(def.SiteName)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		seed := def
		if err := configStore.Save(&seed); err != nil {
			return err
		}
		logger.Info("Seeded site config for %s", def.SiteName)
	}
	return nil
}
