package readmodel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// Notifier delivers read-model change signals to club subscribers.
// The worker calls it only after the corresponding transaction committed.
type Notifier interface {
	Notify(ctx context.Context, clubID, messageType string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) {}

// Worker tails the global event log into the read model. Each event is
// projected in its own transaction together with the cursor update, so an
// event is never applied twice and never skipped, whatever the crash point.
type Worker struct {
	store     eventsourcing.EventStore
	db        *DB
	projector *Projector
	notifier  Notifier
	logger    *slog.Logger

	pollInterval    time.Duration
	batchSize       int
	poisonThreshold int
	resetOnBoot     bool

	cursor   int64
	failures map[int64]int

	stop chan struct{}
	done chan struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPollInterval sets how often the worker polls the log. Default 1s.
func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) { w.pollInterval = interval }
}

// WithBatchSize caps how many events one poll cycle processes. Default 64.
func WithBatchSize(size int) WorkerOption {
	return func(w *Worker) { w.batchSize = size }
}

// WithPoisonThreshold sets how many times a failing event is retried before
// it is skipped. Default 5.
func WithPoisonThreshold(threshold int) WorkerOption {
	return func(w *Worker) { w.poisonThreshold = threshold }
}

// WithResetOnBoot makes Start drop and recreate the read model, re-tailing
// the log from position zero.
func WithResetOnBoot(reset bool) WorkerOption {
	return func(w *Worker) { w.resetOnBoot = reset }
}

// WithNotifier sets the fan-out target for post-commit notifications.
func WithNotifier(n Notifier) WorkerOption {
	return func(w *Worker) { w.notifier = n }
}

// NewWorker creates a projection worker.
func NewWorker(store eventsourcing.EventStore, db *DB, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:           store,
		db:              db,
		projector:       NewProjector(logger),
		notifier:        NopNotifier{},
		logger:          logger,
		pollInterval:    time.Second,
		batchSize:       64,
		poisonThreshold: 5,
		failures:        make(map[int64]int),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements runner.Service.
func (w *Worker) Name() string { return "projection-worker" }

// Start prepares the read model, loads the cursor and launches the poll
// loop in the background.
func (w *Worker) Start(ctx context.Context) error {
	if w.resetOnBoot {
		if err := w.db.Reset(ctx); err != nil {
			return err
		}
	} else if err := w.db.Migrate(ctx); err != nil {
		return err
	}

	cursor, err := LoadCursor(ctx, w.db.Conn())
	if err != nil {
		return err
	}
	w.cursor = cursor
	w.logger.Info("projection worker starting", "position", w.cursor)

	go w.loop()
	return nil
}

// Stop asks the loop to finish and waits for the in-flight cycle.
func (w *Worker) Stop(ctx context.Context) error {
	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if err := w.Poll(ctx); err != nil {
				w.logger.Error("projection poll failed", "error", err)
			}
		}
	}
}

// Poll processes one batch of pending events. Exported so tests and the
// composition root can drive the worker synchronously.
func (w *Worker) Poll(ctx context.Context) error {
	last, err := w.store.LastPosition(ctx)
	if err != nil {
		return err
	}
	if last < w.cursor {
		return nil
	}

	events, err := w.store.ReadFrom(ctx, w.cursor, w.batchSize)
	if err != nil {
		return err
	}
	for _, rec := range events {
		select {
		case <-w.stop:
			return nil
		default:
		}
		if err := w.processOne(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// processOne projects a single event and advances the cursor in the same
// transaction. An event failing poisonThreshold times in a row is logged
// and skipped so the stream keeps moving.
func (w *Worker) processOne(ctx context.Context, rec eventsourcing.RecordedEvent) error {
	notifications, err := w.projectInTx(ctx, rec)
	if err != nil {
		w.failures[rec.Position]++
		if w.failures[rec.Position] < w.poisonThreshold {
			return fmt.Errorf("project event at position %d: %w", rec.Position, err)
		}
		w.logger.Error("skipping poison event",
			"position", rec.Position,
			"event_type", rec.Event.EventType(),
			"event_id", rec.Event.EventID(),
			"attempts", w.failures[rec.Position],
			"error", err)
		delete(w.failures, rec.Position)
		if err := w.advanceCursorOnly(ctx, rec.Position+1); err != nil {
			return err
		}
		w.cursor = rec.Position + 1
		return nil
	}

	delete(w.failures, rec.Position)
	w.cursor = rec.Position + 1
	for _, n := range notifications {
		w.notifier.Notify(ctx, n.ClubID, n.Type)
	}
	return nil
}

func (w *Worker) projectInTx(ctx context.Context, rec eventsourcing.RecordedEvent) ([]Notification, error) {
	tx, err := w.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	notifications, err := w.projector.Apply(ctx, tx, rec.Event)
	if err != nil {
		return nil, err
	}
	if err := SaveCursorTx(ctx, tx, rec.Position+1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (w *Worker) advanceCursorOnly(ctx context.Context, position int64) error {
	tx, err := w.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := SaveCursorTx(ctx, tx, position); err != nil {
		return err
	}
	return tx.Commit()
}
