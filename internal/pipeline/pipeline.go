package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/observability"
)

// ErrQueueFull is returned by Publish when the event buffer has no room left.
var ErrQueueFull = errors.New("event queue is full")

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// BatchLoader writes multiple verification events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.VerificationEvent) error
}

// Dispatcher buffers verification events and hands them to a BatchLoader in
// batches, off the request path.
type Dispatcher struct {
	loader        BatchLoader
	events        chan domain.VerificationEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// New creates a Dispatcher. bufferSize bounds the number of events waiting
// to be loaded; Publish fails fast once it is reached.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration, bufferSize int) *Dispatcher {
	return &Dispatcher{
		loader:        l,
		events:        make(chan domain.VerificationEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Publish enqueues an event without blocking.
func (d *Dispatcher) Publish(_ context.Context, event domain.VerificationEvent) error {
	select {
	case d.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run loads queued events until the context is cancelled. A batch is written
// when it reaches batchSize or when flushInterval elapses, whichever comes
// first. Failed batches are retried with exponential backoff. On shutdown the
// remaining events get one final load attempt.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("event dispatcher started", "batch_size", d.batchSize, "flush_interval", d.flushInterval)
	d.metrics.EventPublishEnabled.Set(1)
	defer d.metrics.EventPublishEnabled.Set(0)

	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()

	backoff := initialBackoff
	batch := make([]domain.VerificationEvent, 0, d.batchSize)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("event dispatcher stopping", "reason", ctx.Err())
			d.drain(ctx, batch)
			return nil
		case e := <-d.events:
			batch = append(batch, e)
			if len(batch) < d.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if !d.flush(ctx, batch, &backoff) {
			d.drain(ctx, batch)
			return nil
		}
		batch = make([]domain.VerificationEvent, 0, d.batchSize)
	}
}

// flush loads one batch, retrying until it succeeds. Returns false if the
// context was cancelled first.
func (d *Dispatcher) flush(ctx context.Context, batch []domain.VerificationEvent, backoff *time.Duration) bool {
	for {
		err := d.loader.LoadBatch(ctx, batch)
		if err == nil {
			d.metrics.EventsPublished.Add(float64(len(batch)))
			d.metrics.EventBatchSize.Observe(float64(len(batch)))
			*backoff = initialBackoff
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		d.logger.Error("load event batch failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)
		d.metrics.EventBatchFailures.Inc()
		if !sleepWithContext(ctx, *backoff) {
			return false
		}
		*backoff = nextBackoff(*backoff, maxBackoff)
	}
}

// drain makes a single attempt to load pending plus anything still queued,
// bounded by drainTimeout.
func (d *Dispatcher) drain(ctx context.Context, pending []domain.VerificationEvent) {
loop:
	for {
		select {
		case e := <-d.events:
			pending = append(pending, e)
		default:
			break loop
		}
	}
	if len(pending) == 0 {
		return
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	if err := d.loader.LoadBatch(drainCtx, pending); err != nil {
		d.logger.Error("final event flush failed, events lost", "error", err, "count", len(pending))
		d.metrics.EventBatchFailures.Inc()
		return
	}
	d.metrics.EventsPublished.Add(float64(len(pending)))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
