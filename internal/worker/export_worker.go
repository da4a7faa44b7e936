package worker

import (
	"context"
	"fmt"
	"time"

	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// Exporter regenerates the schedule file for one month.
type Exporter interface {
	ExportMonth(ctx context.Context, shopID string, month time.Time) (string, error)
}

// ExportTask asks for one shop-month to be re-rendered.
type ExportTask struct {
	ShopID string
	Month  time.Time
}

func (t ExportTask) key() string {
	return fmt.Sprintf("%s:%s", t.ShopID, t.Month.Format("2006-01"))
}

// ExportWorker consumes export tasks from a buffered queue. Tasks arriving in
// a burst (several bookings landing together) are debounced and deduplicated
// per shop-month before rendering.
type ExportWorker struct {
	exporter    Exporter
	retryPolicy RetryPolicy
	queue       chan ExportTask
	debounce    time.Duration
	logger      *zerolog.Logger
}

// NewExportWorker builds a worker with sane defaults.
func NewExportWorker(exporter Exporter, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		exporter:    exporter,
		retryPolicy: retry,
		queue:       make(chan ExportTask, models.WorkerQueueSize),
		debounce:    200 * time.Millisecond,
		logger:      logger,
	}
}

// EnqueueExport schedules a refresh without blocking the caller. A full queue
// drops the task; the next booking for the month re-enqueues it.
func (w *ExportWorker) EnqueueExport(shopID string, month time.Time) {
	task := ExportTask{
		ShopID: shopID,
		Month:  time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Str("task", task.key()).Msg("export queue full, task dropped")
	}
}

// Start launches the main loop; returns when ctx is done and the queue has
// been drained.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case task := <-w.queue:
			batch := w.collectBatch(ctx, task)
			for _, t := range batch {
				w.process(ctx, t)
			}
		}
	}
}

// collectBatch waits out the debounce window and deduplicates whatever
// arrived, preserving order.
func (w *ExportWorker) collectBatch(ctx context.Context, first ExportTask) []ExportTask {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()

	seen := map[string]bool{first.key(): true}
	batch := []ExportTask{first}
	for {
		select {
		case <-ctx.Done():
			return batch
		case task := <-w.queue:
			if !seen[task.key()] {
				seen[task.key()] = true
				batch = append(batch, task)
			}
		case <-timer.C:
			return batch
		}
	}
}

func (w *ExportWorker) process(ctx context.Context, task ExportTask) {
	var err error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		if _, err = w.exporter.ExportMonth(ctx, task.ShopID, task.Month); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(err).Str("task", task.key()).Int("attempt", attempt).Dur("retry_in", delay).Msg("export failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
	w.logger.Error().Err(err).Str("task", task.key()).Msg("export abandoned after retries")
}

// drain renders whatever is still queued, once each, without retries.
func (w *ExportWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seen := map[string]bool{}
	for {
		select {
		case task := <-w.queue:
			if seen[task.key()] {
				continue
			}
			seen[task.key()] = true
			if _, err := w.exporter.ExportMonth(ctx, task.ShopID, task.Month); err != nil {
				w.logger.Error().Err(err).Str("task", task.key()).Msg("drain export failed")
			}
		default:
			return
		}
	}
}
