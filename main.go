package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/specharvest/config"
	"sjsage522/specharvest/helpers"
	"sjsage522/specharvest/internal/browser"
	"sjsage522/specharvest/internal/crawler"
	"sjsage522/specharvest/logger"
	crawlerrors "sjsage522/specharvest/pkg/errors"
	"sjsage522/specharvest/services/cache"
	"sjsage522/specharvest/services/publisher"
	"sjsage522/specharvest/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	cfg := config.LoadConfig()
	if err := newRootCommand(cfg).Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitTempFail is EX_TEMPFAIL from sysexits.h; schedulers may retry the run
const exitTempFail = 75

// exitCode maps a failed run to the process status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case crawlerrors.IsTransient(err):
		return exitTempFail
	default:
		return 1
	}
}

// newRootCommand binds the flags over the environment defaults in cfg
func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "specharvest",
		Short:         "Harvest product spec tables from a Danawa listing into CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				logger.ForComponent("main").Error().Err(err).Msg("Invalid configuration")
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg); err != nil {
				logger.ForComponent("main").Error().Err(err).Msg("Run failed")
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ListingURL, "listing-url", cfg.ListingURL, "listing page to crawl")
	f.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "CSV output path")
	f.IntVar(&cfg.MaxPages, "pages", cfg.MaxPages, "maximum listing pages")
	f.IntVar(&cfg.ItemsPerPage, "items-per-page", cfg.ItemsPerPage, "maximum products per page (0 = all)")
	f.IntVar(&cfg.MaxTotalItems, "max-total-items", cfg.MaxTotalItems, "maximum products per pass (0 = unbounded)")
	f.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run chrome without a window")
	f.IntVar(&cfg.DelayMs, "delay-ms", cfg.DelayMs, "base pacing delay in milliseconds")
	f.BoolVar(&cfg.LongFormat, "long-format", cfg.LongFormat, "write one row per attribute")
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, "browser engine: chrome or http")
	f.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "YAML file extending the category mapping and key renames")
	f.StringVar(&cfg.FailureLog, "failure-log", cfg.FailureLog, "file receiving skipped documents")

	return cmd
}

// run wires the services for one harvest and executes both passes
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.ForComponent("main")

	overrides, err := config.LoadRuleOverrides(cfg.RulesFile)
	if err != nil {
		return err
	}

	launch, err := newLauncher(cfg)
	if err != nil {
		return err
	}

	pub, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Close()
	}

	opts := crawler.DefaultOptions(cfg.ListingURL)
	opts.MaxPages = cfg.MaxPages
	opts.ItemsPerPage = cfg.ItemsPerPage
	opts.MaxTotalItems = cfg.MaxTotalItems
	opts.DelayMs = cfg.DelayMs

	log.Info().
		Str("environment", cfg.Environment).
		Str("engine", cfg.Engine).
		Str("listing", cfg.ListingURL).
		Int("max_pages", cfg.MaxPages).
		Int("items_per_page", cfg.ItemsPerPage).
		Int("max_total_items", cfg.MaxTotalItems).
		Msg("Starting application")

	c := crawler.New(launch, opts, helpers.NewFileFailureLog(cfg.FailureLog))
	w := worker.NewWorker(c, pub, overrides, cfg.OutputPath, cfg.LongFormat)

	result, err := w.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("run_id", result.RunID).Int("records", len(result.Records)).Str("output", result.OutputPath).Msg("Saved")
	return nil
}

// newLauncher returns a browser factory for the configured engine
func newLauncher(cfg *config.Config) (crawler.Launcher, error) {
	switch cfg.Engine {
	case config.EngineChrome:
		return func(ctx context.Context) (browser.Browser, error) {
			b, err := browser.NewChromeBrowser(ctx, cfg.Headless)
			if err != nil {
				return nil, err
			}
			return b, nil
		}, nil
	case config.EngineHTTP:
		cacheSvc := cache.New(cfg.MemcacheAddr)
		if cfg.MemcacheAddr != "" {
			logger.Info("Using Memcache at %s", cfg.MemcacheAddr)
		}
		return func(context.Context) (browser.Browser, error) {
			return browser.NewStaticBrowser(cacheSvc, cfg.RateLimitBlock), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}

// newPublisher connects to Redis when an address is configured
func newPublisher(ctx context.Context, cfg *config.Config) (publisher.Publisher, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	p := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, crawlerrors.NewNetwork("redis", "connect "+cfg.RedisAddr, err)
	}
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	return p, nil
}
