package interfaces

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
)

// VotingRepository stores periods, nominations and winners
type VotingRepository interface {
	CreatePeriod(ctx context.Context, p *model.VotingPeriod) error
	GetPeriod(ctx context.Context, id model.PeriodID) (*model.VotingPeriod, error)
	// ListPeriods returns periods ordered by start time, newest first
	ListPeriods(ctx context.Context) ([]*model.VotingPeriod, error)
	UpdatePeriod(ctx context.Context, p *model.VotingPeriod) error

	// CreateNomination returns ErrAlreadyExists when the nominator already
	// nominated the same nominee in the period
	CreateNomination(ctx context.Context, n *model.Nomination) error
	// ListNominations returns nominations of a period ordered by creation time
	ListNominations(ctx context.Context, periodID model.PeriodID) ([]*model.Nomination, error)

	SaveWinners(ctx context.Context, winners []*model.Winner) error
	// ListWinners returns winners of a period, or of all periods when
	// periodID is empty, newest first
	ListWinners(ctx context.Context, periodID model.PeriodID) ([]*model.Winner, error)
}
