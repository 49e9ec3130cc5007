package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/laurel-hq/laurel/pkg/utils/logging"
)

// loop runs a job once immediately and then on every tick until stopped.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For horizontal scaling, the sync run-lock must become a distributed lock
type loop struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newLoop(name string, interval time.Duration, job func(ctx context.Context) error) *loop {
	return &loop{
		name:     name,
		interval: interval,
		job:      job,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. It does not block server startup.
func (l *loop) Start(ctx context.Context) error {
	logging.From(ctx).Info("Worker starting",
		slog.String("worker", l.name),
		slog.String("interval", l.interval.String()))

	go l.run(ctx)
	return nil
}

// Stop signals the loop to stop and waits for the running job to finish
func (l *loop) Stop() {
	logging.Default().Info("Worker stopping", slog.String("worker", l.name))
	close(l.stopCh)
	<-l.doneCh
	logging.Default().Info("Worker stopped", slog.String("worker", l.name))
}

// Done is closed when the loop has exited
func (l *loop) Done() <-chan struct{} {
	return l.doneCh
}

func (l *loop) run(ctx context.Context) {
	defer close(l.doneCh)
	logger := logging.From(ctx).With(slog.String("worker", l.name))

	if err := l.job(ctx); err != nil {
		logger.Error("Initial run failed (will retry next interval)", slog.Any("error", err))
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := l.job(ctx); err != nil {
				logger.Error("Run failed (will retry next interval)", slog.Any("error", err))
			}

		case <-l.stopCh:
			logger.Info("Worker received stop signal")
			return

		case <-ctx.Done():
			logger.Info("Worker context cancelled")
			return
		}
	}
}
