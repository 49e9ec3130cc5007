package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// winnerNamespace derives stable winner IDs so that retrying a close
// overwrites instead of duplicating
var winnerNamespace = uuid.MustParse("6f1c9a7e-3d4b-4c8e-9a51-2b7d0e4f8c13")

type VotingUseCase struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	dispatch dispatchFunc
}

// CreatePeriod opens a new voting window
func (uc *VotingUseCase) CreatePeriod(ctx context.Context, name string, startsAt, endsAt time.Time) (*model.VotingPeriod, error) {
	now := uc.now()
	p := &model.VotingPeriod{
		ID:        model.PeriodID(uuid.NewString()),
		Name:      strings.TrimSpace(name),
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Voting().CreatePeriod(ctx, p); err != nil {
		return nil, goerr.Wrap(err, "failed to create voting period", goerr.V(PeriodIDKey, p.ID))
	}

	logging.From(ctx).Info("Voting period created",
		slog.String("period_id", string(p.ID)),
		slog.String("name", p.Name),
		slog.Time("starts_at", p.StartsAt),
		slog.Time("ends_at", p.EndsAt),
	)
	return p, nil
}

func (uc *VotingUseCase) ListPeriods(ctx context.Context) ([]*model.VotingPeriod, error) {
	periods, err := uc.repo.Voting().ListPeriods(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list voting periods")
	}
	return periods, nil
}

func (uc *VotingUseCase) GetPeriod(ctx context.Context, id model.PeriodID) (*model.VotingPeriod, error) {
	p, err := uc.repo.Voting().GetPeriod(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrPeriodNotFound, "voting period not found", goerr.V(PeriodIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get voting period", goerr.V(PeriodIDKey, id))
	}
	return p, nil
}

// Now returns the current time of the use case clock
func (uc *VotingUseCase) Now() time.Time {
	return uc.now()
}

// NominateInput is one nomination request
type NominateInput struct {
	PeriodID    model.PeriodID
	NominatorID model.EmployeeID
	NomineeID   model.EmployeeID
	Reason      string
}

// Nominate records a nomination after checking that the period is open,
// both employees are active, the nominee is eligible, nobody nominates
// themselves and both share the nominee's voting group.
func (uc *VotingUseCase) Nominate(ctx context.Context, in NominateInput) (*model.Nomination, error) {
	n, err := uc.nominate(ctx, in)
	switch {
	case err == nil:
		uc.metrics.Nominations.WithLabelValues("accepted").Inc()
	case errors.Is(err, ErrDuplicateNomination):
		uc.metrics.Nominations.WithLabelValues("duplicate").Inc()
	default:
		uc.metrics.Nominations.WithLabelValues("rejected").Inc()
	}
	return n, err
}

func (uc *VotingUseCase) nominate(ctx context.Context, in NominateInput) (*model.Nomination, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, goerr.Wrap(model.ErrInvalidNomination, "reason is required")
	}
	if utf8.RuneCountInString(reason) > model.MaxNominationReasonLength {
		return nil, goerr.Wrap(model.ErrInvalidNomination, "reason is too long",
			goerr.V("max_length", model.MaxNominationReasonLength))
	}

	period, err := uc.GetPeriod(ctx, in.PeriodID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	switch {
	case period.StatusAt(now) == types.PeriodStatusClosed:
		return nil, goerr.Wrap(ErrPeriodClosed, "cannot nominate", goerr.V(PeriodIDKey, period.ID))
	case !period.AcceptsNominations(now):
		return nil, goerr.Wrap(ErrPeriodNotOpen, "cannot nominate", goerr.V(PeriodIDKey, period.ID))
	}

	if in.NominatorID == in.NomineeID {
		return nil, goerr.Wrap(ErrNominationNotAllowed, "self-nomination is not allowed",
			goerr.V(NominatorIDKey, in.NominatorID))
	}

	nominator, err := uc.activeEmployee(ctx, in.NominatorID)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid nominator", goerr.V(NominatorIDKey, in.NominatorID))
	}
	nominee, err := uc.activeEmployee(ctx, in.NomineeID)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid nominee", goerr.V(NomineeIDKey, in.NomineeID))
	}
	if !nominee.VotingEligible {
		return nil, goerr.Wrap(ErrNominationNotAllowed, "nominee is not eligible",
			goerr.V(NomineeIDKey, nominee.ID),
			goerr.V("rule", nominee.EligibilityRule))
	}
	if nominee.VotingGroup != "" && nominee.VotingGroup != nominator.VotingGroup {
		return nil, goerr.Wrap(ErrNominationNotAllowed, "nominee is in another voting group",
			goerr.V(NomineeIDKey, nominee.ID),
			goerr.V("nominee_group", nominee.VotingGroup),
			goerr.V("nominator_group", nominator.VotingGroup))
	}

	n := &model.Nomination{
		ID:          model.NominationID(uuid.NewString()),
		PeriodID:    period.ID,
		NomineeID:   nominee.ID,
		NominatorID: nominator.ID,
		Reason:      reason,
		VotingGroup: nominee.VotingGroup,
		CreatedAt:   now,
	}
	if err := uc.repo.Voting().CreateNomination(ctx, n); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrDuplicateNomination, "duplicate nomination",
				goerr.V(PeriodIDKey, period.ID),
				goerr.V(NomineeIDKey, nominee.ID))
		}
		return nil, goerr.Wrap(err, "failed to create nomination", goerr.V(PeriodIDKey, period.ID))
	}

	logging.From(ctx).Info("Nomination recorded",
		slog.String("period_id", string(n.PeriodID)),
		slog.String("nominee_id", string(n.NomineeID)),
		slog.String("voting_group", n.VotingGroup),
	)
	return n, nil
}

func (uc *VotingUseCase) activeEmployee(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	e, err := uc.repo.Employee().FindByID(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrNominationNotAllowed, "employee does not exist", goerr.V(EmployeeIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, id))
	}
	if !e.IsActive {
		return nil, goerr.Wrap(ErrNominationNotAllowed, "employee is not active", goerr.V(EmployeeIDKey, id))
	}
	return e, nil
}

func (uc *VotingUseCase) ListNominations(ctx context.Context, periodID model.PeriodID) ([]*model.Nomination, error) {
	if _, err := uc.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	nominations, err := uc.repo.Voting().ListNominations(ctx, periodID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list nominations", goerr.V(PeriodIDKey, periodID))
	}
	return nominations, nil
}

// Tally ranks the nominees of every voting group of the period
func (uc *VotingUseCase) Tally(ctx context.Context, periodID model.PeriodID) ([]model.GroupTally, error) {
	nominations, err := uc.ListNominations(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return model.Tally(nominations), nil
}

// ClosePeriod records the top nominee of each group as its winner and
// closes the period. The announcement is sent in the background.
func (uc *VotingUseCase) ClosePeriod(ctx context.Context, periodID model.PeriodID) (*model.VotingPeriod, []*model.Winner, error) {
	period, err := uc.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, nil, err
	}
	if period.ClosedAt != nil {
		return nil, nil, goerr.Wrap(ErrPeriodClosed, "cannot close period", goerr.V(PeriodIDKey, periodID))
	}

	tally, err := uc.Tally(ctx, periodID)
	if err != nil {
		return nil, nil, err
	}

	now := uc.now()
	winners := make([]*model.Winner, 0, len(tally))
	for _, g := range tally {
		if len(g.Entries) == 0 {
			continue
		}
		top := g.Entries[0]
		winners = append(winners, &model.Winner{
			ID:          model.WinnerID(uuid.NewSHA1(winnerNamespace, []byte(string(periodID)+"\x00"+g.VotingGroup)).String()),
			PeriodID:    periodID,
			VotingGroup: g.VotingGroup,
			EmployeeID:  top.NomineeID,
			Score:       top.Score,
			RecordedAt:  now,
		})
	}

	if len(winners) > 0 {
		if err := uc.repo.Voting().SaveWinners(ctx, winners); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to save winners", goerr.V(PeriodIDKey, periodID))
		}
	}

	period.ClosedAt = &now
	period.UpdatedAt = now
	if err := uc.repo.Voting().UpdatePeriod(ctx, period); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to close period", goerr.V(PeriodIDKey, periodID))
	}

	logging.From(ctx).Info("Voting period closed",
		slog.String("period_id", string(period.ID)),
		slog.Int("winners", len(winners)),
	)

	if uc.notifier != nil {
		announced := period.Clone()
		uc.dispatch(ctx, "announce_winners", func(ctx context.Context) error {
			return uc.announce(ctx, announced, winners)
		})
	}

	return period, winners, nil
}

func (uc *VotingUseCase) announce(ctx context.Context, period *model.VotingPeriod, winners []*model.Winner) error {
	employees := make(map[model.EmployeeID]*model.Employee, len(winners))
	for _, w := range winners {
		e, err := uc.repo.Employee().FindByID(ctx, w.EmployeeID)
		if err != nil {
			logging.From(ctx).Warn("Winner not found for announcement",
				slog.String("employee_id", string(w.EmployeeID)),
				slog.Any("error", err),
			)
			continue
		}
		employees[w.EmployeeID] = e
	}

	if err := uc.notifier.AnnounceWinners(ctx, period, winners, employees); err != nil {
		return goerr.Wrap(err, "failed to announce winners", goerr.V(PeriodIDKey, period.ID))
	}
	return nil
}

// CloseExpiredPeriods closes every period whose end has passed. A failure
// on one period is reported and does not stop the others.
func (uc *VotingUseCase) CloseExpiredPeriods(ctx context.Context) (int, error) {
	periods, err := uc.ListPeriods(ctx)
	if err != nil {
		return 0, err
	}

	now := uc.now()
	closed := 0
	for _, p := range periods {
		if !p.Expired(now) {
			continue
		}
		if _, _, err := uc.ClosePeriod(ctx, p.ID); err != nil {
			errutil.Handle(ctx, err, "failed to close expired period")
			continue
		}
		closed++
	}
	return closed, nil
}

// ListWinners returns the winners of a period, or of every period when
// periodID is empty
func (uc *VotingUseCase) ListWinners(ctx context.Context, periodID model.PeriodID) ([]*model.Winner, error) {
	winners, err := uc.repo.Voting().ListWinners(ctx, periodID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list winners", goerr.V(PeriodIDKey, periodID))
	}
	return winners, nil
}
