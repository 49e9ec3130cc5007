package model_test

import (
	"testing"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

var evalNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := evalNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func baseEmployee() *model.Employee {
	return &model.Employee{
		ID:          "emp-1",
		FullName:    "Ana Perez",
		Email:       "ana@example.com",
		Department:  "Sales",
		JobTitle:    "Account Executive",
		PositionID:  "P-100",
		CompanyCode: "MX01",
		IsActive:    true,
		HireDate:    daysAgo(365),
	}
}

func TestEligibilityConfig_Evaluate(t *testing.T) {
	cfg := &model.EligibilityConfig{
		MinimumDaysForEligibility: 90,
		RequireActiveStatus:       true,
		ExcludedDepartments:       []string{"Executive"},
		ExcludedTitles:            []string{"  chief executive officer "},
		ExcludedPositions:         []string{"P-999"},
		CustomRules: model.CustomEligibilityRules{
			AllowedCompanyCodes:          []string{"MX01", "US01"},
			ExcludedCompanyCodes:         []string{"US01"},
			MinDirectReportsForExclusion: model.IntPtr(5),
		},
	}

	tests := []struct {
		name   string
		modify func(e *model.Employee)
		want   model.EligibilityDecision
	}{
		{
			name:   "eligible",
			modify: func(e *model.Employee) {},
			want:   model.EligibilityDecision{Eligible: true},
		},
		{
			name:   "inactive short-circuits before every other rule",
			modify: func(e *model.Employee) {
				e.IsActive = false
				e.Department = "Executive"
				e.HireDate = nil
			},
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleInactive},
		},
		{
			name:   "excluded title ignores case and surrounding spaces",
			modify: func(e *model.Employee) { e.JobTitle = "Chief Executive Officer" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleExcludedTitle},
		},
		{
			name:   "excluded department",
			modify: func(e *model.Employee) { e.Department = "executive" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleExcludedDepartment},
		},
		{
			name:   "excluded position",
			modify: func(e *model.Employee) { e.PositionID = "P-999" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleExcludedPosition},
		},
		{
			name:   "company code not in allow list",
			modify: func(e *model.Employee) { e.CompanyCode = "BR01" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleCompanyCodeNotAllowed},
		},
		{
			name:   "blank company code fails non-empty allow list",
			modify: func(e *model.Employee) { e.CompanyCode = "" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleCompanyCodeNotAllowed},
		},
		{
			name:   "company code excluded",
			modify: func(e *model.Employee) { e.CompanyCode = "us01" },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleCompanyCodeExcluded},
		},
		{
			name:   "direct reports at threshold",
			modify: func(e *model.Employee) { e.DirectReportsCount = model.IntPtr(5) },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleDirectReports},
		},
		{
			name:   "direct reports below threshold",
			modify: func(e *model.Employee) { e.DirectReportsCount = model.IntPtr(4) },
			want:   model.EligibilityDecision{Eligible: true},
		},
		{
			name:   "no tenure date",
			modify: func(e *model.Employee) { e.HireDate = nil },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleNoTenureDate},
		},
		{
			name:   "rehire date supersedes hire date",
			modify: func(e *model.Employee) { e.RehireDate = daysAgo(10) },
			want:   model.EligibilityDecision{Rule: types.EligibilityRuleTenure},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := baseEmployee()
			tt.modify(e)
			gt.Value(t, cfg.Evaluate(e, evalNow)).Equal(tt.want)
			gt.Value(t, model.IsEligible(e, cfg, evalNow)).Equal(tt.want.Eligible)
		})
	}
}

func TestEligibilityConfig_TenureBoundary(t *testing.T) {
	cfg := &model.EligibilityConfig{MinimumDaysForEligibility: 90, RequireActiveStatus: true}

	t.Run("exactly the minimum is eligible", func(t *testing.T) {
		e := baseEmployee()
		e.HireDate = daysAgo(90)
		gt.Bool(t, model.IsEligible(e, cfg, evalNow)).True()
	})

	t.Run("one day short is ineligible", func(t *testing.T) {
		e := baseEmployee()
		e.HireDate = daysAgo(89)
		d := cfg.Evaluate(e, evalNow)
		gt.Bool(t, d.Eligible).False()
		gt.Value(t, d.Rule).Equal(types.EligibilityRuleTenure)
	})

	t.Run("one second short is ineligible", func(t *testing.T) {
		e := baseEmployee()
		hired := daysAgo(90).Add(time.Second)
		e.HireDate = &hired
		gt.Bool(t, model.IsEligible(e, cfg, evalNow)).False()
	})
}

func TestEligibilityConfig_ZeroDirectReportsIsAValue(t *testing.T) {
	cfg := &model.EligibilityConfig{
		CustomRules: model.CustomEligibilityRules{MinDirectReportsForExclusion: model.IntPtr(1)},
	}

	e := baseEmployee()
	e.DirectReportsCount = model.IntPtr(0)
	gt.Bool(t, model.IsEligible(e, cfg, evalNow)).True()

	e.DirectReportsCount = nil
	gt.Bool(t, model.IsEligible(e, cfg, evalNow)).True()

	e.DirectReportsCount = model.IntPtr(1)
	gt.Bool(t, model.IsEligible(e, cfg, evalNow)).False()
}

func TestEligibilityConfig_InactiveAllowedWhenNotRequired(t *testing.T) {
	cfg := &model.EligibilityConfig{RequireActiveStatus: false}
	e := baseEmployee()
	e.IsActive = false
	gt.Bool(t, model.IsEligible(e, cfg, evalNow)).True()
}

func TestApplyEligibility(t *testing.T) {
	cfg := model.DefaultEligibilityConfig()
	e := baseEmployee()

	gt.Bool(t, model.ApplyEligibility(e, cfg, evalNow)).True()
	gt.Bool(t, e.VotingEligible).True()
	gt.Value(t, e.EligibilityRule).Equal(types.EligibilityRuleNone)

	gt.Bool(t, model.ApplyEligibility(e, cfg, evalNow)).False()

	e.IsActive = false
	gt.Bool(t, model.ApplyEligibility(e, cfg, evalNow)).True()
	gt.Value(t, e.EligibilityRule).Equal(types.EligibilityRuleInactive)
}

func TestEligibilityConfig_Validate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		gt.NoError(t, model.DefaultEligibilityConfig().Validate())
	})

	t.Run("negative days", func(t *testing.T) {
		cfg := model.DefaultEligibilityConfig()
		cfg.MinimumDaysForEligibility = -1
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})

	t.Run("zero threshold", func(t *testing.T) {
		cfg := model.DefaultEligibilityConfig()
		cfg.CustomRules.MinDirectReportsForExclusion = model.IntPtr(0)
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})

	t.Run("blank list entry", func(t *testing.T) {
		cfg := model.DefaultEligibilityConfig()
		cfg.ExcludedTitles = []string{"Intern", "  "}
		gt.Error(t, cfg.Validate()).Is(model.ErrInvalidConfig)
	})
}

func TestEligibilityConfigUpdate_Apply(t *testing.T) {
	base := model.DefaultEligibilityConfig()
	base.ExcludedDepartments = []string{"Executive"}

	days := 30
	u := &model.EligibilityConfigUpdate{
		MinimumDaysForEligibility: &days,
		ExcludedTitles:            []string{"Intern"},
	}
	got := u.Apply(base)

	gt.Number(t, got.MinimumDaysForEligibility).Equal(30)
	gt.Bool(t, got.RequireActiveStatus).True()
	gt.Array(t, got.ExcludedDepartments).Equal([]string{"Executive"})
	gt.Array(t, got.ExcludedTitles).Equal([]string{"Intern"})

	// base is untouched
	gt.Number(t, base.MinimumDaysForEligibility).Equal(model.DefaultMinimumDaysForEligibility)
	gt.Array(t, base.ExcludedTitles).Length(0)
}
