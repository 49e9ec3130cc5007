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

// VotingGroupUseCase manages the voting group configuration
type VotingGroupUseCase struct {
	repo     interfaces.Repository
	defaults *model.VotingGroupConfig
	now      func() time.Time
	metrics  *metrics.Metrics
}

// Get returns the saved configuration, or the policy defaults
func (uc *VotingGroupUseCase) Get(ctx context.Context) (*model.VotingGroupConfig, error) {
	cfg, err := uc.repo.Config().GetVotingGroup(ctx)
	if errors.Is(err, interfaces.ErrNotFound) {
		return uc.defaults.Clone(), nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get voting group config")
	}
	return cfg, nil
}

// Upsert applies a partial update and reassigns every employee's group
func (uc *VotingGroupUseCase) Upsert(ctx context.Context, update *model.VotingGroupConfigUpdate) (*model.VotingGroupConfig, *model.RecomputeResult, error) {
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
func (uc *VotingGroupUseCase) Reset(ctx context.Context) (*model.VotingGroupConfig, *model.RecomputeResult, error) {
	current, err := uc.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return uc.save(ctx, current, uc.defaults.Clone())
}

func (uc *VotingGroupUseCase) save(ctx context.Context, current, next *model.VotingGroupConfig) (*model.VotingGroupConfig, *model.RecomputeResult, error) {
	next.Version = current.Version + 1
	next.UpdatedAt = uc.now()

	if err := uc.repo.Config().SaveVotingGroup(ctx, next); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to save voting group config", goerr.V("version", next.Version))
	}

	logging.From(ctx).Info("Voting group config saved",
		slog.Int("version", next.Version),
		slog.String("strategy", next.Strategy.String()),
	)

	result, err := uc.RecomputeForAll(ctx, next)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "voting group config saved but recompute failed", goerr.V("version", next.Version))
	}
	return next, result, nil
}

// RecomputeForAll reassigns the voting group of every stored employee
func (uc *VotingGroupUseCase) RecomputeForAll(ctx context.Context, cfg *model.VotingGroupConfig) (*model.RecomputeResult, error) {
	return recompute(ctx, uc.repo, uc.metrics, uc.now(), func(e *model.Employee) bool {
		return model.ApplyVotingGroup(e, cfg)
	})
}
