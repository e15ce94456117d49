// Package pipeline drives two concurrent passes over the event catalog
// with a bounded worker pool: one for division lists, one for event
// details. Per-item failures are isolated into error records so a single
// bad payload never aborts a run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/Kuugang/AES-events-scraper/pkg/catalog"
	"github.com/Kuugang/AES-events-scraper/pkg/detail"
	"github.com/Kuugang/AES-events-scraper/pkg/record"
)

var (
	aesItemsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aes_pipeline_items_total",
		Help: "Catalog items processed by phase and outcome",
	}, []string{"phase", "outcome"})

	aesPhaseDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aes_pipeline_phase_duration_seconds",
		Help:    "Wall-clock duration of one whole phase",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"phase"})
)

// FetcherFactory builds a detail fetcher for one worker. Each worker
// calls it once at start so every worker owns its own client and no
// HTTP state is shared across goroutines.
type FetcherFactory func() (*detail.Fetcher, error)

// Config holds runner configuration.
type Config struct {
	// Workers is the pool size for each phase.
	Workers int

	// Delay is an optional pause a worker takes between items, for
	// politeness against the upstream API.
	Delay time.Duration
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{Workers: 16}
}

// Result aggregates both phases. Every catalog item contributes exactly
// one outcome per phase: records on success, one ErrorRecord on failure.
type Result struct {
	Events         []record.EventRecord
	EventErrors    []record.ErrorRecord
	Divisions      []record.DivisionRecord
	DivisionErrors []record.ErrorRecord
}

// Runner executes the two phases over a catalog.
type Runner struct {
	factory FetcherFactory
	config  Config
}

// NewRunner creates a runner. The factory is invoked once per worker
// per phase.
func NewRunner(factory FetcherFactory, config Config) *Runner {
	if config.Workers <= 0 {
		config.Workers = 16
	}
	return &Runner{
		factory: factory,
		config:  config,
	}
}

// Run processes all items: first the division phase, then the event
// phase. Order of results is unspecified. The returned error is only
// non-nil when a phase could not start at all (factory failure or
// cancelled context); per-item failures land in the error slices.
func (r *Runner) Run(ctx context.Context, items []catalog.Item) (*Result, error) {
	res := &Result{}

	divisions, divErrors, err := runPhase(ctx, "divisions", items, r.config, r.factory,
		func(ctx context.Context, f *detail.Fetcher, item catalog.Item) ([]record.DivisionRecord, error) {
			return f.FetchDivisions(ctx, item)
		})
	if err != nil {
		return nil, fmt.Errorf("division phase: %w", err)
	}
	res.Divisions = divisions
	res.DivisionErrors = divErrors

	events, eventErrors, err := runPhase(ctx, "events", items, r.config, r.factory,
		func(ctx context.Context, f *detail.Fetcher, item catalog.Item) ([]record.EventRecord, error) {
			rec, err := f.FetchEvent(ctx, item)
			if err != nil {
				return nil, err
			}
			return []record.EventRecord{rec}, nil
		})
	if err != nil {
		return nil, fmt.Errorf("event phase: %w", err)
	}
	res.Events = events
	res.EventErrors = eventErrors

	return res, nil
}

// outcome carries one item's result through the collection channel.
type outcome[T any] struct {
	records []T
	err     error
	item    catalog.Item
}

// runPhase fans items out to a bounded worker pool and collects one
// outcome per item.
func runPhase[T any](
	ctx context.Context,
	phase string,
	items []catalog.Item,
	cfg Config,
	factory FetcherFactory,
	fetch func(context.Context, *detail.Fetcher, catalog.Item) ([]T, error),
) ([]T, []record.ErrorRecord, error) {
	start := time.Now()
	logger := log.With().Str("phase", phase).Logger()

	logger.Info().
		Int("items", len(items)).
		Int("workers", cfg.Workers).
		Msg("Starting phase")

	queue := make(chan catalog.Item, len(items))
	outcomes := make(chan outcome[T], len(items))

	for _, item := range items {
		queue <- item
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		fetcher, err := factory()
		if err != nil {
			return nil, nil, fmt.Errorf("worker %d: %w", i, err)
		}

		wg.Add(1)
		go func(workerID int, f *detail.Fetcher) {
			defer wg.Done()
			processed := 0

			for item := range queue {
				select {
				case <-ctx.Done():
					outcomes <- outcome[T]{err: ctx.Err(), item: item}
					continue
				default:
				}

				records, err := fetch(ctx, f, item)
				outcomes <- outcome[T]{records: records, err: err, item: item}
				processed++

				if cfg.Delay > 0 {
					select {
					case <-time.After(cfg.Delay):
					case <-ctx.Done():
					}
				}
			}

			if processed > 0 {
				logger.Debug().
					Int("worker_id", workerID).
					Int("items_processed", processed).
					Msg("Worker completed")
			}
		}(i, fetcher)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var records []T
	var errs []record.ErrorRecord
	done := 0

	for out := range outcomes {
		done++
		if out.err != nil {
			aesItemsProcessedTotal.WithLabelValues(phase, "error").Inc()
			logger.Warn().
				Err(out.err).
				Str("event_id", out.item.EventID).
				Str("scheduler_id", out.item.SchedulerID).
				Msg("Item fetch failed")
			errs = append(errs, record.NewErrorRecord(out.err, serializeItem(out.item)))
		} else {
			aesItemsProcessedTotal.WithLabelValues(phase, "success").Inc()
			records = append(records, out.records...)
		}

		if done%50 == 0 {
			logger.Info().
				Int("done", done).
				Int("total", len(items)).
				Float64("progress_pct", float64(done)/float64(len(items))*100).
				Msg("Phase progress")
		}
	}

	aesPhaseDurationSeconds.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	logger.Info().
		Int("items", len(items)).
		Int("errors", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("Phase complete")

	return records, errs, nil
}

// serializeItem renders the raw catalog item for an error record.
func serializeItem(item catalog.Item) []byte {
	data, err := json.Marshal(item.Raw)
	if err != nil {
		return []byte(fmt.Sprintf("%v", item.Raw))
	}
	return data
}
