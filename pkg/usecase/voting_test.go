package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/repository/memory"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func seedVoters(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()
	for _, e := range []*model.Employee{
		{ID: "ann", FullName: "Ann Lee", Email: "ann@example.com", IsActive: true, VotingEligible: true, VotingGroup: "Austin"},
		{ID: "bob", FullName: "Bob Ray", Email: "bob@example.com", IsActive: true, VotingEligible: true, VotingGroup: "Austin"},
		{ID: "cy", FullName: "Cy Vu", Email: "cy@example.com", IsActive: true, VotingEligible: true, VotingGroup: "Denver"},
		{ID: "dee", FullName: "Dee Fox", Email: "dee@example.com", IsActive: true, VotingEligible: false, EligibilityRule: types.EligibilityRuleTenure, VotingGroup: "Austin"},
		{ID: "eve", FullName: "Eve Ng", Email: "eve@example.com", IsActive: false, VotingEligible: false, VotingGroup: "Austin"},
		{ID: "fay", FullName: "Fay Ho", Email: "fay@example.com", IsActive: true, VotingEligible: true},
	} {
		_, err := repo.Employee().Create(ctx, e)
		gt.NoError(t, err).Required()
	}
}

func openPeriod(t *testing.T, uc *usecase.UseCases) *model.VotingPeriod {
	t.Helper()
	p, err := uc.Voting.CreatePeriod(context.Background(), "March", testNow.AddDate(0, 0, -14), testNow.AddDate(0, 0, 16))
	gt.NoError(t, err).Required()
	return p
}

func TestVotingUseCase_CreatePeriod(t *testing.T) {
	uc := newUseCases(memory.New())
	ctx := context.Background()

	t.Run("valid period", func(t *testing.T) {
		p, err := uc.Voting.CreatePeriod(ctx, "  April  ", testNow, testNow.AddDate(0, 1, 0))
		gt.NoError(t, err).Required()
		gt.Value(t, p.Name).Equal("April")
		gt.String(t, string(p.ID)).NotEqual("")
		gt.Value(t, p.StatusAt(testNow)).Equal(types.PeriodStatusOpen)

		got, err := uc.Voting.GetPeriod(ctx, p.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("April")
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := uc.Voting.CreatePeriod(ctx, "Bad", testNow, testNow.Add(-time.Hour))
		gt.Error(t, err).Is(model.ErrInvalidPeriod)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := uc.Voting.GetPeriod(ctx, "missing")
		gt.Error(t, err).Is(usecase.ErrPeriodNotFound)
	})
}

func TestVotingUseCase_Nominate(t *testing.T) {
	repo := memory.New()
	seedVoters(t, repo)
	uc := newUseCases(repo)
	ctx := context.Background()
	period := openPeriod(t, uc)

	t.Run("accepted nomination records nominee group", func(t *testing.T) {
		n, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID:    period.ID,
			NominatorID: "ann",
			NomineeID:   "bob",
			Reason:      "  Shipped the release  ",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, n.VotingGroup).Equal("Austin")
		gt.Value(t, n.Reason).Equal("Shipped the release")
		gt.Value(t, n.CreatedAt).Equal(testNow)
	})

	t.Run("same pair twice is a duplicate", func(t *testing.T) {
		_, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: period.ID, NominatorID: "ann", NomineeID: "bob", Reason: "Again",
		})
		gt.Error(t, err).Is(usecase.ErrDuplicateNomination)
	})

	t.Run("nominee without group accepts any nominator", func(t *testing.T) {
		n, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: period.ID, NominatorID: "cy", NomineeID: "fay", Reason: "Helped everyone",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, n.VotingGroup).Equal("")
	})

	rejected := []struct {
		name  string
		input usecase.NominateInput
		want  error
	}{
		{"self nomination", usecase.NominateInput{NominatorID: "ann", NomineeID: "ann", Reason: "me"}, usecase.ErrNominationNotAllowed},
		{"ineligible nominee", usecase.NominateInput{NominatorID: "ann", NomineeID: "dee", Reason: "x"}, usecase.ErrNominationNotAllowed},
		{"inactive nominee", usecase.NominateInput{NominatorID: "ann", NomineeID: "eve", Reason: "x"}, usecase.ErrNominationNotAllowed},
		{"inactive nominator", usecase.NominateInput{NominatorID: "eve", NomineeID: "ann", Reason: "x"}, usecase.ErrNominationNotAllowed},
		{"unknown nominee", usecase.NominateInput{NominatorID: "ann", NomineeID: "zed", Reason: "x"}, usecase.ErrNominationNotAllowed},
		{"other voting group", usecase.NominateInput{NominatorID: "cy", NomineeID: "bob", Reason: "x"}, usecase.ErrNominationNotAllowed},
		{"blank reason", usecase.NominateInput{NominatorID: "bob", NomineeID: "ann", Reason: "   "}, model.ErrInvalidNomination},
		{"long reason", usecase.NominateInput{NominatorID: "bob", NomineeID: "ann", Reason: strings.Repeat("é", model.MaxNominationReasonLength+1)}, model.ErrInvalidNomination},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.input
			in.PeriodID = period.ID
			_, err := uc.Voting.Nominate(ctx, in)
			gt.Error(t, err).Is(tc.want)
		})
	}

	t.Run("reason at the limit is accepted", func(t *testing.T) {
		_, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: period.ID, NominatorID: "bob", NomineeID: "ann",
			Reason: strings.Repeat("é", model.MaxNominationReasonLength),
		})
		gt.NoError(t, err)
	})

	t.Run("upcoming period is not open", func(t *testing.T) {
		p, err := uc.Voting.CreatePeriod(ctx, "Later", testNow.AddDate(0, 1, 0), testNow.AddDate(0, 2, 0))
		gt.NoError(t, err).Required()
		_, err = uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: p.ID, NominatorID: "ann", NomineeID: "bob", Reason: "x",
		})
		gt.Error(t, err).Is(usecase.ErrPeriodNotOpen)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: "missing", NominatorID: "ann", NomineeID: "bob", Reason: "x",
		})
		gt.Error(t, err).Is(usecase.ErrPeriodNotFound)
	})
}

func TestVotingUseCase_ClosePeriod(t *testing.T) {
	repo := memory.New()
	seedVoters(t, repo)
	notifier := &mockNotifier{}
	uc := newUseCases(repo, usecase.WithNotifier(notifier))
	ctx := context.Background()
	period := openPeriod(t, uc)

	for _, in := range []usecase.NominateInput{
		{NominatorID: "ann", NomineeID: "bob", Reason: "a"},
		{NominatorID: "dee", NomineeID: "bob", Reason: "b"},
		{NominatorID: "bob", NomineeID: "ann", Reason: "c"},
		{NominatorID: "ann", NomineeID: "fay", Reason: "d"},
	} {
		in.PeriodID = period.ID
		_, err := uc.Voting.Nominate(ctx, in)
		gt.NoError(t, err).Required()
	}

	tally, err := uc.Voting.Tally(ctx, period.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, tally).Length(2).Required()
	gt.Value(t, tally[0].VotingGroup).Equal("")
	gt.Value(t, tally[1].VotingGroup).Equal("Austin")
	gt.Value(t, tally[1].Entries[0].NomineeID).Equal(model.EmployeeID("bob"))
	gt.Number(t, tally[1].Entries[0].Score).Equal(2)

	closed, winners, err := uc.Voting.ClosePeriod(ctx, period.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, closed.ClosedAt).NotNil()
	gt.Value(t, closed.StatusAt(testNow)).Equal(types.PeriodStatusClosed)
	gt.Array(t, winners).Length(2).Required()
	gt.Value(t, winners[1].EmployeeID).Equal(model.EmployeeID("bob"))
	gt.Number(t, winners[1].Score).Equal(2)

	stored, err := uc.Voting.ListWinners(ctx, period.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(2)

	gt.Array(t, notifier.announced).Length(1).Required()
	gt.Value(t, notifier.announced[0].ID).Equal(period.ID)
	gt.Value(t, notifier.employees[0]["bob"].FullName).Equal("Bob Ray")

	t.Run("closing twice fails", func(t *testing.T) {
		_, _, err := uc.Voting.ClosePeriod(ctx, period.ID)
		gt.Error(t, err).Is(usecase.ErrPeriodClosed)
	})

	t.Run("closed period rejects nominations", func(t *testing.T) {
		_, err := uc.Voting.Nominate(ctx, usecase.NominateInput{
			PeriodID: period.ID, NominatorID: "bob", NomineeID: "fay", Reason: "late",
		})
		gt.Error(t, err).Is(usecase.ErrPeriodClosed)
	})
}

func TestVotingUseCase_CloseExpiredPeriods(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(repo)
	ctx := context.Background()

	expired, err := uc.Voting.CreatePeriod(ctx, "February", testNow.AddDate(0, -1, -14), testNow.AddDate(0, 0, -14))
	gt.NoError(t, err).Required()
	current := openPeriod(t, uc)

	n, err := uc.Voting.CloseExpiredPeriods(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(1)

	got, err := uc.Voting.GetPeriod(ctx, expired.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.ClosedAt).NotNil()

	still, err := uc.Voting.GetPeriod(ctx, current.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, still.ClosedAt).Nil()

	// nothing left to close
	n, err = uc.Voting.CloseExpiredPeriods(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(0)

	winners, err := uc.Voting.ListWinners(ctx, "")
	gt.NoError(t, err).Required()
	gt.Array(t, winners).Length(0)
}
