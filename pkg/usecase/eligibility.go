package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// EligibilityUseCase manages the eligibility configuration and keeps the
// stored decisions of every employee in line with it
type EligibilityUseCase struct {
	repo     interfaces.Repository
	defaults *model.EligibilityConfig
	now      func() time.Time
	metrics  *metrics.Metrics
}

// Get returns the saved configuration, or the policy defaults when nothing
// has been saved yet
func (uc *EligibilityUseCase) Get(ctx context.Context) (*model.EligibilityConfig, error) {
	cfg, err := uc.repo.Config().GetEligibility(ctx)
	if errors.Is(err, interfaces.ErrNotFound) {
		return uc.defaults.Clone(), nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get eligibility config")
	}
	return cfg, nil
}

// Upsert applies a partial update, saves it with a bumped version and
// re-evaluates every employee against the new rules
func (uc *EligibilityUseCase) Upsert(ctx context.Context, update *model.EligibilityConfigUpdate) (*model.EligibilityConfig, *model.RecomputeResult, error) {
	current, err := uc.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	next := update.Apply(current)
	if err := next.Validate(); err != nil {
		return nil, nil, err
	}
	return uc.save(ctx, current, next)
}

// Reset restores the policy defaults
func (uc *EligibilityUseCase) Reset(ctx context.Context) (*model.EligibilityConfig, *model.RecomputeResult, error) {
	current, err := uc.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return uc.save(ctx, current, uc.defaults.Clone())
}

func (uc *EligibilityUseCase) save(ctx context.Context, current, next *model.EligibilityConfig) (*model.EligibilityConfig, *model.RecomputeResult, error) {
	next.Version = current.Version + 1
	next.UpdatedAt = uc.now()

	if err := uc.repo.Config().SaveEligibility(ctx, next); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to save eligibility config", goerr.V("version", next.Version))
	}

	logging.From(ctx).Info("Eligibility config saved", slog.Int("version", next.Version))

	result, err := uc.RecomputeForAll(ctx, next)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "eligibility config saved but recompute failed", goerr.V("version", next.Version))
	}
	return next, result, nil
}

// RecomputeForAll re-evaluates every stored employee with cfg and persists
// changed decisions. Write failures are collected and do not stop the run.
func (uc *EligibilityUseCase) RecomputeForAll(ctx context.Context, cfg *model.EligibilityConfig) (*model.RecomputeResult, error) {
	now := uc.now()
	return recompute(ctx, uc.repo, uc.metrics, now, func(e *model.Employee) bool {
		return model.ApplyEligibility(e, cfg, now)
	})
}

// recompute applies fn to every stored employee and saves the ones it changed
func recompute(ctx context.Context, repo interfaces.Repository, m *metrics.Metrics, now time.Time, fn func(e *model.Employee) bool) (*model.RecomputeResult, error) {
	employees, err := repo.Employee().FindAll(ctx, model.EmployeeFilter{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees for recompute")
	}

	result := &model.RecomputeResult{Errors: []model.SyncError{}}
	for _, e := range employees {
		if !fn(e) {
			continue
		}
		e.UpdatedAt = now
		if _, err := repo.Employee().Update(ctx, e); err != nil {
			result.Errors = append(result.Errors, model.SyncError{
				EmployeeID: e.ID,
				Operation:  model.SyncOperationRecompute,
				Message:    err.Error(),
			})
			m.SyncErrors.WithLabelValues(string(model.SyncOperationRecompute)).Inc()
			continue
		}
		result.TotalUpdated++
	}

	logging.From(ctx).Info("Recomputed employees",
		slog.Int("total", len(employees)),
		slog.Int("updated", result.TotalUpdated),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}
