// Command aes-export scrapes the Advanced Event Systems landing API and
// writes events and divisions into an Excel workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Kuugang/AES-events-scraper/pkg/cache"
	"github.com/Kuugang/AES-events-scraper/pkg/catalog"
	"github.com/Kuugang/AES-events-scraper/pkg/client"
	"github.com/Kuugang/AES-events-scraper/pkg/config"
	"github.com/Kuugang/AES-events-scraper/pkg/detail"
	"github.com/Kuugang/AES-events-scraper/pkg/export"
	"github.com/Kuugang/AES-events-scraper/pkg/logging"
	"github.com/Kuugang/AES-events-scraper/pkg/pipeline"
)

func main() {
	cfg := config.Load()

	// Flags override the environment. --past-events takes an explicit
	// =true/=false value, so there is no truthiness ambiguity.
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers for detail pages")
	flag.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "output Excel file path")
	flag.DurationVar(&cfg.Delay, "delay", cfg.Delay, "delay between requests per worker")
	flag.BoolVar(&cfg.PastEvents, "past-events", cfg.PastEvents, "fetch past events instead of upcoming ones")
	flag.Parse()

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogFormat == "console",
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				log.Warn().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
}

// run executes one full export: catalog, both pipeline phases, workbook.
func run(ctx context.Context, cfg *config.Config) error {
	cacheManager, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}

	newClient := func() (*client.Client, error) {
		ccfg := client.DefaultConfig(cfg.UserAgent)
		ccfg.BaseURL = cfg.BaseURL
		ccfg.ConnectTimeout = cfg.ConnectTimeout
		ccfg.RequestTimeout = cfg.RequestTimeout
		ccfg.Cache = cacheManager
		return client.New(ccfg)
	}

	catalogClient, err := newClient()
	if err != nil {
		return fmt.Errorf("catalog client: %w", err)
	}

	fetcher := catalog.NewFetcher(catalogClient, cfg.PastEvents)

	count, err := fetcher.FetchCount(ctx)
	if err != nil {
		return err
	}

	items, err := fetcher.FetchAll(ctx, count)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(func() (*detail.Fetcher, error) {
		c, err := newClient()
		if err != nil {
			return nil, err
		}
		return detail.NewFetcher(c), nil
	}, pipeline.Config{
		Workers: cfg.Workers,
		Delay:   cfg.Delay,
	})

	res, err := runner.Run(ctx, items)
	if err != nil {
		return err
	}

	if err := export.NewWriter(cfg.OutputPath).Write(res); err != nil {
		return err
	}

	log.Info().
		Str("path", cfg.OutputPath).
		Int("events", len(res.Events)).
		Int("event_errors", len(res.EventErrors)).
		Msg("Events written")
	log.Info().
		Str("path", cfg.OutputPath).
		Int("divisions", len(res.Divisions)).
		Int("division_errors", len(res.DivisionErrors)).
		Msg("Divisions written")

	return nil
}

// newCache connects the optional Redis response cache. An empty
// REDIS_URL disables caching entirely.
func newCache(ctx context.Context, cfg *config.Config) (*cache.Manager, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return cache.NewManager(redisClient, cfg.CacheTTL), nil
}
