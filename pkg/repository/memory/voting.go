package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type votingRepository struct {
	mu          sync.RWMutex
	periods     map[model.PeriodID]*model.VotingPeriod
	nominations map[string]*model.Nomination // keyed by DedupeKey
	winners     map[model.WinnerID]*model.Winner
}

var _ interfaces.VotingRepository = &votingRepository{}

func newVotingRepository() *votingRepository {
	return &votingRepository{
		periods:     make(map[model.PeriodID]*model.VotingPeriod),
		nominations: make(map[string]*model.Nomination),
		winners:     make(map[model.WinnerID]*model.Winner),
	}
}

func (r *votingRepository) CreatePeriod(ctx context.Context, p *model.VotingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.periods[p.ID]; ok {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "period already exists", goerr.V("id", p.ID))
	}
	r.periods[p.ID] = p.Clone()
	return nil
}

func (r *votingRepository) GetPeriod(ctx context.Context, id model.PeriodID) (*model.VotingPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.periods[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "period not found", goerr.V("id", id))
	}
	return p.Clone(), nil
}

func (r *votingRepository) ListPeriods(ctx context.Context) ([]*model.VotingPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	periods := make([]*model.VotingPeriod, 0, len(r.periods))
	for _, p := range r.periods {
		periods = append(periods, p.Clone())
	}
	sort.Slice(periods, func(i, j int) bool {
		if !periods[i].StartsAt.Equal(periods[j].StartsAt) {
			return periods[i].StartsAt.After(periods[j].StartsAt)
		}
		return periods[i].ID < periods[j].ID
	})
	return periods, nil
}

func (r *votingRepository) UpdatePeriod(ctx context.Context, p *model.VotingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.periods[p.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "period not found", goerr.V("id", p.ID))
	}
	r.periods[p.ID] = p.Clone()
	return nil
}

func (r *votingRepository) CreateNomination(ctx context.Context, n *model.Nomination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := n.DedupeKey()
	if _, ok := r.nominations[key]; ok {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "nomination already exists",
			goerr.V("period_id", n.PeriodID),
			goerr.V("nominator_id", n.NominatorID),
			goerr.V("nominee_id", n.NomineeID))
	}
	nominationCopy := *n
	r.nominations[key] = &nominationCopy
	return nil
}

func (r *votingRepository) ListNominations(ctx context.Context, periodID model.PeriodID) ([]*model.Nomination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Nomination
	for _, n := range r.nominations {
		if n.PeriodID != periodID {
			continue
		}
		nominationCopy := *n
		result = append(result, &nominationCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *votingRepository) SaveWinners(ctx context.Context, winners []*model.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range winners {
		winnerCopy := *w
		r.winners[w.ID] = &winnerCopy
	}
	return nil
}

func (r *votingRepository) ListWinners(ctx context.Context, periodID model.PeriodID) ([]*model.Winner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Winner
	for _, w := range r.winners {
		if periodID != "" && w.PeriodID != periodID {
			continue
		}
		winnerCopy := *w
		result = append(result, &winnerCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].RecordedAt.After(result[j].RecordedAt)
		}
		return result[i].VotingGroup < result[j].VotingGroup
	})
	return result, nil
}
