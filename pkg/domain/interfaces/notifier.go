package interfaces

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
)

// Notifier publishes sync reports and period results to people
type Notifier interface {
	NotifySyncResult(ctx context.Context, result *model.SyncResult) error

	// AnnounceWinners publishes the winners of a closed period. employees
	// resolves winner IDs to display data and may miss entries.
	AnnounceWinners(ctx context.Context, period *model.VotingPeriod, winners []*model.Winner, employees map[model.EmployeeID]*model.Employee) error
}
