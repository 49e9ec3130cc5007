package model_test

import (
	"testing"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestVotingGroupConfig_Assign(t *testing.T) {
	mixed := &model.VotingGroupConfig{
		Strategy: types.GroupingStrategyMixed,
		MixedMappings: []model.MixedGroupMapping{
			{Department: "IT", Location: "Tijuana", Group: "TJ Tech"},
		},
		LocationGroups: map[string]string{
			"Monterrey": "North",
		},
		DepartmentGroups: map[string]string{
			"Sales": "Commercial",
			"IT":    "Technology",
		},
		FallbackStrategy: types.FallbackStrategyLocation,
	}

	tests := []struct {
		name       string
		cfg        *model.VotingGroupConfig
		department string
		location   string
		wantGroup  string
		wantOK     bool
	}{
		{
			name:      "location strategy trims and collapses spaces",
			cfg:       &model.VotingGroupConfig{Strategy: types.GroupingStrategyLocation},
			location:  "  Mexico   City ",
			wantGroup: "Mexico City",
			wantOK:    true,
		},
		{
			name:      "location strategy treats Unknown as absent",
			cfg:       &model.VotingGroupConfig{Strategy: types.GroupingStrategyLocation},
			location:  "UNKNOWN",
			wantGroup: "",
			wantOK:    false,
		},
		{
			name:       "department strategy",
			cfg:        &model.VotingGroupConfig{Strategy: types.GroupingStrategyDepartment},
			department: "Finance",
			location:   "Tijuana",
			wantGroup:  "Finance",
			wantOK:     true,
		},
		{
			name:       "department strategy with blank department",
			cfg:        &model.VotingGroupConfig{Strategy: types.GroupingStrategyDepartment},
			department: "   ",
			wantOK:     false,
		},
		{
			name:       "mixed pair wins over department table",
			cfg:        mixed,
			department: "it",
			location:   "TIJUANA",
			wantGroup:  "TJ Tech",
			wantOK:     true,
		},
		{
			name:       "location table before department table",
			cfg:        mixed,
			department: "Sales",
			location:   "Monterrey",
			wantGroup:  "North",
			wantOK:     true,
		},
		{
			name:       "department table when location unmapped",
			cfg:        mixed,
			department: "Sales",
			location:   "Tijuana",
			wantGroup:  "Commercial",
			wantOK:     true,
		},
		{
			name:       "unmapped falls back to location",
			cfg:        mixed,
			department: "Marketing",
			location:   "Guadalajara",
			wantGroup:  "Guadalajara",
			wantOK:     true,
		},
		{
			name: "fallback none yields no group",
			cfg: &model.VotingGroupConfig{
				Strategy:         types.GroupingStrategyCustom,
				FallbackStrategy: types.FallbackStrategyNone,
			},
			department: "Marketing",
			location:   "Guadalajara",
			wantOK:     false,
		},
		{
			name: "fallback department",
			cfg: &model.VotingGroupConfig{
				Strategy:         types.GroupingStrategyCustom,
				FallbackStrategy: types.FallbackStrategyDepartment,
			},
			department: "Marketing",
			location:   "Guadalajara",
			wantGroup:  "Marketing",
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &model.Employee{Department: tt.department, Location: tt.location}
			group, ok := tt.cfg.Assign(e)
			gt.Value(t, ok).Equal(tt.wantOK)
			gt.Value(t, group).Equal(tt.wantGroup)
		})
	}
}

func TestApplyVotingGroup(t *testing.T) {
	cfg := model.DefaultVotingGroupConfig()
	e := &model.Employee{Location: "Tijuana"}

	gt.Bool(t, model.ApplyVotingGroup(e, cfg)).True()
	gt.Value(t, e.VotingGroup).Equal("Tijuana")
	gt.Bool(t, model.ApplyVotingGroup(e, cfg)).False()

	e.Location = ""
	gt.Bool(t, model.ApplyVotingGroup(e, cfg)).True()
	gt.Value(t, e.VotingGroup).Equal("")
}

func TestVotingGroupConfig_Validate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		gt.NoError(t, model.DefaultVotingGroupConfig().Validate())
	})

	t.Run("invalid strategy", func(t *testing.T) {
		cfg := model.DefaultVotingGroupConfig()
		cfg.Strategy = "team"
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})

	t.Run("invalid fallback", func(t *testing.T) {
		cfg := model.DefaultVotingGroupConfig()
		cfg.FallbackStrategy = ""
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})

	t.Run("keys colliding after normalization", func(t *testing.T) {
		cfg := model.DefaultVotingGroupConfig()
		cfg.DepartmentGroups = map[string]string{"Sales": "A", " sales ": "B"}
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})

	t.Run("mixed mapping missing location", func(t *testing.T) {
		cfg := model.DefaultVotingGroupConfig()
		cfg.MixedMappings = []model.MixedGroupMapping{{Department: "IT", Group: "Tech"}}
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})
}

func TestMixedMappingsCodec(t *testing.T) {
	mappings := []model.MixedGroupMapping{
		{Department: "IT", Location: "Tijuana", Group: "TJ Tech"},
	}

	raw, err := model.EncodeMixedMappings(mappings)
	gt.NoError(t, err).Required()

	decoded, err := model.DecodeMixedMappings(raw)
	gt.NoError(t, err).Required()
	gt.Value(t, decoded).Equal(mappings)

	t.Run("empty string is empty set", func(t *testing.T) {
		decoded, err := model.DecodeMixedMappings("")
		gt.NoError(t, err).Required()
		gt.Array(t, decoded).Length(0)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := model.DecodeMixedMappings("{not json")
		gt.Error(t, err).Is(model.ErrMalformedMapping)
	})
}

func TestVotingGroupConfigUpdate_Apply(t *testing.T) {
	base := model.DefaultVotingGroupConfig()
	base.LocationGroups = map[string]string{"Tijuana": "North"}

	strategy := types.GroupingStrategyCustom
	u := &model.VotingGroupConfigUpdate{
		Strategy:       &strategy,
		LocationGroups: map[string]string{},
	}
	got := u.Apply(base)

	gt.Value(t, got.Strategy).Equal(types.GroupingStrategyCustom)
	gt.Value(t, got.FallbackStrategy).Equal(types.FallbackStrategyNone)
	gt.Number(t, len(got.LocationGroups)).Equal(0)
	gt.Number(t, len(base.LocationGroups)).Equal(1)
}
