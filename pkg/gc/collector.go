// Package gc provides background retry of failed unpins.
//
// Cascading deletes never block on the pin gateway: when an unpin fails,
// the handle is journaled to a backlog and metadata removal proceeds.
// The collector drains that backlog on an interval so remote content does
// not stay pinned forever just because the gateway was down at delete time.
package gc

import (
	"context"
	"time"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
)

// Collector periodically retries the unpin backlog.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	store  *metadata.Store
	config Config
	stopCh chan struct{}
	doneCh chan struct{}
}

// Config contains configuration for the unpin collector.
type Config struct {
	// Enabled controls whether background retries are active (default: true)
	Enabled bool

	// Interval is how often to run a retry pass (default: 5m)
	Interval time.Duration

	// MaxAttempts is how many times a task is retried before it is dropped
	// (default: 10; 0 means retry forever)
	MaxAttempts int

	// DryRun mode reports the backlog size without unpinning anything
	DryRun bool
}

// NewCollector creates a collector over the store's unpin backlog.
//
// The collector is initialized but not started. Call Start() to begin
// background retries.
func NewCollector(store *metadata.Store, config Config) *Collector {
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 10
	}

	return &Collector{
		store:  store,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins background backlog retries.
//
// This starts a goroutine that runs a pass at the configured interval until
// Stop() is called.
func (c *Collector) Start() {
	if !c.config.Enabled {
		logger.Info("Unpin collector disabled")
		return
	}

	logger.Info("Starting unpin collector: interval=%s max_attempts=%d dry_run=%v",
		c.config.Interval, c.config.MaxAttempts, c.config.DryRun)

	go c.worker()
}

// Stop stops the collector and waits for the worker to finish any
// in-progress pass. Returns the context error if it expires first.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	logger.Info("Stopping unpin collector...")

	close(c.stopCh)

	select {
	case <-c.doneCh:
		logger.Info("Unpin collector stopped successfully")
		return nil
	case <-ctx.Done():
		logger.Warn("Unpin collector shutdown timeout")
		return ctx.Err()
	}
}

// RunNow triggers an immediate retry pass. Useful for tests and manual
// triggers; blocks until the pass completes or ctx is cancelled.
func (c *Collector) RunNow(ctx context.Context) (metadata.UnpinBacklogStats, error) {
	logger.Info("Running unpin retry pass (manual trigger)...")
	return c.store.RetryUnpins(ctx, c.config.MaxAttempts, c.config.DryRun)
}

// worker is the background goroutine that runs periodic retry passes.
func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	logger.Info("Unpin collector worker started")

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			stats, err := c.store.RetryUnpins(ctx, c.config.MaxAttempts, c.config.DryRun)
			cancel()

			if err != nil {
				logger.Error("Unpin retry pass failed: %v", err)
			} else if stats.Attempted > 0 || stats.Remaining > 0 {
				logger.Info("Unpin retry pass completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			logger.Info("Unpin collector worker stopping...")
			return
		}
	}
}
