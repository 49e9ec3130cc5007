package interfaces

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
)

// ConfigRepository stores the singleton policy documents. Getters return
// ErrNotFound until the document has been saved once.
type ConfigRepository interface {
	GetEligibility(ctx context.Context) (*model.EligibilityConfig, error)
	SaveEligibility(ctx context.Context, cfg *model.EligibilityConfig) error

	GetVotingGroup(ctx context.Context) (*model.VotingGroupConfig, error)
	SaveVotingGroup(ctx context.Context, cfg *model.VotingGroupConfig) error
}
