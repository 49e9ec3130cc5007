package memory

import (
	"context"
	"sync"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type configRepository struct {
	mu          sync.RWMutex
	eligibility *model.EligibilityConfig
	votingGroup *model.VotingGroupConfig
}

var _ interfaces.ConfigRepository = &configRepository{}

func newConfigRepository() *configRepository {
	return &configRepository{}
}

func (r *configRepository) GetEligibility(ctx context.Context) (*model.EligibilityConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.eligibility == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "eligibility config not found",
			goerr.V("key", model.EligibilityConfigKey))
	}
	return r.eligibility.Clone(), nil
}

func (r *configRepository) SaveEligibility(ctx context.Context, cfg *model.EligibilityConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eligibility = cfg.Clone()
	return nil
}

func (r *configRepository) GetVotingGroup(ctx context.Context) (*model.VotingGroupConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.votingGroup == nil {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "voting group config not found",
			goerr.V("key", model.VotingGroupConfigKey))
	}
	return r.votingGroup.Clone(), nil
}

func (r *configRepository) SaveVotingGroup(ctx context.Context, cfg *model.VotingGroupConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.votingGroup = cfg.Clone()
	return nil
}
