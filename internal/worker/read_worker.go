package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vantron/internal/collector"

	"github.com/sirupsen/logrus"
)

const defaultReadInterval = 10 * time.Second

// Store persists read cycles, e.g. the DuckDB history.
type Store interface {
	InsertReadings(ctx context.Context, r *collector.Readings) (int64, error)
}

// ReadWorker drives the plugin's read callbacks at a fixed interval.
type ReadWorker struct {
	provider collector.ReadingsProvider
	store    Store
	interval time.Duration
	log      logrus.FieldLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
	last    *collector.Readings
}

// NewReadWorker creates a new worker instance. A non-positive interval
// falls back to collectd's default of ten seconds.
func NewReadWorker(p collector.ReadingsProvider, interval time.Duration, log logrus.FieldLogger) (*ReadWorker, error) {
	if p == nil {
		return nil, errors.New("readings provider is required")
	}
	if interval <= 0 {
		interval = defaultReadInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReadWorker{
		provider: p,
		interval: interval,
		log:      log,
	}, nil
}

// WithStore records every cycle that produced readings in s.
func (w *ReadWorker) WithStore(s Store) *ReadWorker {
	w.store = s
	return w
}

// Start begins the periodic read loop. The first cycle runs immediately.
func (w *ReadWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("worker already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.loop(ctx)
	return nil
}

// Stop gracefully stops the worker and waits for an in-flight cycle.
func (w *ReadWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.running = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// PullOnce executes a single read cycle immediately.
func (w *ReadWorker) PullOnce(ctx context.Context) error {
	return w.execute(ctx)
}

// Last returns the readings of the most recent cycle, or nil before the first.
func (w *ReadWorker) Last() *collector.Readings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *ReadWorker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.executeLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.executeLogged(ctx)
		}
	}
}

func (w *ReadWorker) executeLogged(ctx context.Context) {
	if err := w.execute(ctx); err != nil && ctx.Err() == nil {
		w.log.WithError(err).Error("Read cycle failed")
	}
}

func (w *ReadWorker) execute(ctx context.Context) error {
	r, err := w.provider.Read(ctx)

	if r != nil {
		w.mu.Lock()
		w.last = r
		w.mu.Unlock()

		if w.store != nil {
			if _, sErr := w.store.InsertReadings(ctx, r); sErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to store readings: %w", sErr))
			}
		}
	}

	if err != nil {
		return fmt.Errorf("read cycle failed: %w", err)
	}
	return nil
}
