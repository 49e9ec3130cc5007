package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// FullSyncer runs one directory reconciliation
type FullSyncer interface {
	RunFullSync(ctx context.Context) (*model.SyncResult, error)
}

// SyncWorker runs a full sync at startup and then periodically
type SyncWorker struct {
	*loop
	syncer FullSyncer
}

// NewSyncWorker creates a worker that syncs every interval
func NewSyncWorker(syncer FullSyncer, interval time.Duration) *SyncWorker {
	w := &SyncWorker{syncer: syncer}
	w.loop = newLoop("employee_sync", interval, w.sync)
	return w
}

func (w *SyncWorker) sync(ctx context.Context) error {
	result, err := w.syncer.RunFullSync(ctx)
	if errors.Is(err, usecase.ErrSyncInProgress) {
		// A manual run is already doing the work
		logging.From(ctx).Info("Scheduled sync skipped, another run is in progress")
		return nil
	}
	if err != nil {
		return goerr.Wrap(err, "scheduled sync failed")
	}

	logging.From(ctx).Info("Scheduled sync completed",
		slog.Int("changed", result.Changed()),
		slog.Int("errors", len(result.Errors)),
		slog.String("duration", result.FinishedAt.Sub(result.StartedAt).String()),
	)
	return nil
}
