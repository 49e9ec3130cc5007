package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runConfigRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("unsaved configs return ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Config().GetEligibility(ctx)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		_, err = repo.Config().GetVotingGroup(ctx)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("eligibility config round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg := &model.EligibilityConfig{
			Version:                   3,
			MinimumDaysForEligibility: 30,
			RequireActiveStatus:       true,
			ExcludedDepartments:       []string{"Executive"},
			ExcludedTitles:            []string{"Intern", "Contractor"},
			ExcludedPositions:         []string{"P-100"},
			CustomRules: model.CustomEligibilityRules{
				AllowedCompanyCodes:          []string{"US01"},
				ExcludedCompanyCodes:         []string{"XX99"},
				MinDirectReportsForExclusion: model.IntPtr(5),
			},
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		gt.NoError(t, repo.Config().SaveEligibility(ctx, cfg)).Required()

		got, err := repo.Config().GetEligibility(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, got.Version).Equal(3)
		gt.Number(t, got.MinimumDaysForEligibility).Equal(30)
		gt.Bool(t, got.RequireActiveStatus).True()
		gt.Array(t, got.ExcludedTitles).Length(2).Required()
		gt.Array(t, got.ExcludedTitles).Has("Contractor")
		gt.Array(t, got.ExcludedPositions).Has("P-100")
		gt.Array(t, got.CustomRules.AllowedCompanyCodes).Has("US01")
		gt.Array(t, got.CustomRules.ExcludedCompanyCodes).Has("XX99")
		gt.Value(t, got.CustomRules.MinDirectReportsForExclusion).NotNil()
		gt.Number(t, *got.CustomRules.MinDirectReportsForExclusion).Equal(5)
	})

	t.Run("voting group config round trip keeps mixed mappings", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg := &model.VotingGroupConfig{
			Version:          2,
			Strategy:         types.GroupingStrategyMixed,
			DepartmentGroups: map[string]string{"Engineering": "Builders"},
			LocationGroups:   map[string]string{"Austin": "Texas"},
			MixedMappings: []model.MixedGroupMapping{
				{Department: "Sales", Location: "Austin", Group: "Texas Sales"},
			},
			FallbackStrategy: types.FallbackStrategyLocation,
			UpdatedAt:        time.Now().UTC().Truncate(time.Millisecond),
		}
		gt.NoError(t, repo.Config().SaveVotingGroup(ctx, cfg)).Required()

		got, err := repo.Config().GetVotingGroup(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Strategy).Equal(types.GroupingStrategyMixed)
		gt.Value(t, got.FallbackStrategy).Equal(types.FallbackStrategyLocation)
		gt.Value(t, got.DepartmentGroups["Engineering"]).Equal("Builders")
		gt.Value(t, got.LocationGroups["Austin"]).Equal("Texas")
		gt.Array(t, got.MixedMappings).Length(1).Required()
		gt.Value(t, got.MixedMappings[0]).Equal(cfg.MixedMappings[0])
	})

	t.Run("saving again overwrites the singleton", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg := model.DefaultVotingGroupConfig()
		gt.NoError(t, repo.Config().SaveVotingGroup(ctx, cfg)).Required()

		cfg.Strategy = types.GroupingStrategyDepartment
		cfg.Version = 2
		gt.NoError(t, repo.Config().SaveVotingGroup(ctx, cfg)).Required()

		got, err := repo.Config().GetVotingGroup(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Strategy).Equal(types.GroupingStrategyDepartment)
		gt.Number(t, got.Version).Equal(2)
		gt.Value(t, got.DepartmentGroups).NotNil()
	})
}

func TestMemoryConfigRepository(t *testing.T) {
	runConfigRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreConfigRepository(t *testing.T) {
	runConfigRepositoryTest(t, newFirestoreRepository)
}
