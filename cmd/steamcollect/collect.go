package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"steamcollect/pkg/auth"
	"steamcollect/pkg/collector"
	"steamcollect/pkg/config"
	"steamcollect/pkg/logger"
	"steamcollect/pkg/ratelimit"
	"steamcollect/pkg/steam"
	"steamcollect/pkg/store"
)

var (
	// Collect command flags
	apiKey       string
	minReviews   int
	maxGames     int
	requestDelay time.Duration
	dbName       string
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a collection pass over the Steam catalog",
	Long: `Run one collection pass.

The collector fetches the complete app catalog, visits candidates in
random order, and accepts full games whose review count meets the
configured minimum. Accepted games are enriched with store page tags
and written to Postgres in batches.

Database credentials come from the config file or DB_* environment
variables. An API key is optional for the public endpoints used here;
store one with 'steamcollect auth set' if you have one.`,
	Example: `  # Collect with defaults (100 games, 1000 review minimum)
  steamcollect collect

  # Larger run with a lower review bar
  steamcollect collect --max-games 500 --min-reviews 250

  # Slow down for a shared network
  steamcollect collect --request-delay 2s`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&apiKey, "api-key", "", "Steam web API key (optional)")
	collectCmd.Flags().IntVar(&minReviews, "min-reviews", 1000, "minimum total reviews for a game to be accepted")
	collectCmd.Flags().IntVar(&maxGames, "max-games", 100, "stop after this many games are accepted")
	collectCmd.Flags().DurationVar(&requestDelay, "request-delay", time.Second, "minimum delay between requests")
	collectCmd.Flags().StringVar(&dbName, "db-name", "", "target database name")
}

func runCollect(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if apiKey != "" {
		flags["api-key"] = apiKey
	}
	if minReviews != 1000 {
		flags["min-reviews"] = minReviews
	}
	if maxGames != 100 {
		flags["max-games"] = maxGames
	}
	if requestDelay != time.Second {
		flags["request-delay"] = requestDelay
	}
	if dbName != "" {
		flags["db-name"] = dbName
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("steamcollect starting")

	// The catalog and storefront endpoints are public, so a missing key
	// is not fatal
	if cfg.Steam.APIKey == "" {
		if manager, err := auth.NewManager(); err == nil {
			if cred, err := manager.Retrieve(); err == nil {
				cfg.Steam.APIKey = cred.APIKey
				log.Info("Using stored API key")
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, err := buildLimiter(cfg)
	if err != nil {
		return err
	}

	client := steam.NewClient(cfg.Collector.RequestTimeout, limiter, cfg.Collector.MaxRetries, log)
	client.SetHeader("User-Agent", cfg.Steam.UserAgent)

	catalog := steam.NewCatalog(client, log)
	reviews := steam.NewReviews(client, log)
	details := steam.NewDetails(client, reviews, cfg.Steam.Region, cfg.Steam.Language, cfg.Collector.MinReviews, log)
	tags := steam.NewTags(client, log)

	st, err := store.Open(ctx, cfg.Database.DSN(), log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.WithError(err).Error("Failed to close database cleanly")
		}
	}()

	c := collector.New(catalog, details, tags, st, collector.Options{
		MaxGames:      cfg.Collector.MaxGames,
		CommitEvery:   cfg.Collector.CommitEvery,
		ProgressEvery: cfg.Collector.ProgressEvery,
	}, log)

	accepted, err := c.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Collection run failed")
		return err
	}

	log.WithField("accepted", accepted).Info("Collection run completed")
	fmt.Printf("Collected %d games into %s\n", accepted, cfg.Database.Name)
	return nil
}

// buildLimiter selects the limiter implementation from configuration
func buildLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	switch strings.ToLower(cfg.RateLimit.Mode) {
	case "fixed":
		return ratelimit.NewFixedInterval(cfg.RateLimit.RequestDelay), nil
	case "token_bucket":
		return ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown rate limit mode %q", cfg.RateLimit.Mode)
	}
}
