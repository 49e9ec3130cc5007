package model

import (
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// EligibilityConfigKey is the singleton key of the eligibility configuration
	EligibilityConfigKey = "eligibility"

	// DefaultMinimumDaysForEligibility applies when no policy file overrides it
	DefaultMinimumDaysForEligibility = 90
)

// EligibilityConfig is the rule set deciding who may receive nominations
type EligibilityConfig struct {
	Version                   int
	MinimumDaysForEligibility int
	RequireActiveStatus       bool
	ExcludedDepartments       []string
	ExcludedTitles            []string
	ExcludedPositions         []string
	CustomRules               CustomEligibilityRules
	UpdatedAt                 time.Time
}

// CustomEligibilityRules holds the optional company code and manager rules
type CustomEligibilityRules struct {
	AllowedCompanyCodes          []string
	ExcludedCompanyCodes         []string
	MinDirectReportsForExclusion *int
}

// EligibilityDecision is the outcome of evaluating one employee.
// Rule names the first rule that failed and is empty when Eligible is true.
type EligibilityDecision struct {
	Eligible bool
	Rule     types.EligibilityRule
}

// DefaultEligibilityConfig returns the built-in rule set
func DefaultEligibilityConfig() *EligibilityConfig {
	return &EligibilityConfig{
		Version:                   1,
		MinimumDaysForEligibility: DefaultMinimumDaysForEligibility,
		RequireActiveStatus:       true,
	}
}

// Evaluate applies the rules in order and stops at the first failure:
// active status, excluded title/department/position, company code allow
// and deny lists, direct report threshold, then tenure.
func (c *EligibilityConfig) Evaluate(e *Employee, now time.Time) EligibilityDecision {
	if c.RequireActiveStatus && !e.IsActive {
		return ineligible(types.EligibilityRuleInactive)
	}

	if containsFold(c.ExcludedTitles, e.JobTitle) {
		return ineligible(types.EligibilityRuleExcludedTitle)
	}
	if containsFold(c.ExcludedDepartments, e.Department) {
		return ineligible(types.EligibilityRuleExcludedDepartment)
	}
	if containsFold(c.ExcludedPositions, e.PositionID) {
		return ineligible(types.EligibilityRuleExcludedPosition)
	}

	rules := c.CustomRules
	if len(rules.AllowedCompanyCodes) > 0 && !containsFold(rules.AllowedCompanyCodes, e.CompanyCode) {
		return ineligible(types.EligibilityRuleCompanyCodeNotAllowed)
	}
	if containsFold(rules.ExcludedCompanyCodes, e.CompanyCode) {
		return ineligible(types.EligibilityRuleCompanyCodeExcluded)
	}

	if rules.MinDirectReportsForExclusion != nil && e.DirectReportsCount != nil &&
		*e.DirectReportsCount >= *rules.MinDirectReportsForExclusion {
		return ineligible(types.EligibilityRuleDirectReports)
	}

	start := e.TenureStart()
	if start == nil {
		return ineligible(types.EligibilityRuleNoTenureDate)
	}
	required := time.Duration(c.MinimumDaysForEligibility) * 24 * time.Hour
	if now.Sub(*start) < required {
		return ineligible(types.EligibilityRuleTenure)
	}

	return EligibilityDecision{Eligible: true}
}

// IsEligible is the boolean form of EligibilityConfig.Evaluate
func IsEligible(e *Employee, cfg *EligibilityConfig, now time.Time) bool {
	return cfg.Evaluate(e, now).Eligible
}

// ApplyEligibility evaluates the employee and stores the decision on it.
// Returns true when the stored decision changed.
func ApplyEligibility(e *Employee, cfg *EligibilityConfig, now time.Time) bool {
	d := cfg.Evaluate(e, now)
	changed := e.VotingEligible != d.Eligible || e.EligibilityRule != d.Rule
	e.VotingEligible = d.Eligible
	e.EligibilityRule = d.Rule
	return changed
}

// Validate checks the configuration shape
func (c *EligibilityConfig) Validate() error {
	if c.MinimumDaysForEligibility < 0 {
		return goerr.Wrap(ErrInvalidConfig, "minimum days for eligibility must not be negative",
			goerr.V(ConfigFieldKey, "minimumDaysForEligibility"),
			goerr.V(ConfigValueKey, c.MinimumDaysForEligibility))
	}
	if n := c.CustomRules.MinDirectReportsForExclusion; n != nil && *n < 1 {
		return goerr.Wrap(ErrInvalidConfig, "direct report threshold must be at least 1",
			goerr.V(ConfigFieldKey, "customRules.minDirectReportsForExclusion"),
			goerr.V(ConfigValueKey, *n))
	}

	lists := map[string][]string{
		"excludedDepartments":              c.ExcludedDepartments,
		"excludedTitles":                   c.ExcludedTitles,
		"excludedPositions":                c.ExcludedPositions,
		"customRules.allowedCompanyCodes":  c.CustomRules.AllowedCompanyCodes,
		"customRules.excludedCompanyCodes": c.CustomRules.ExcludedCompanyCodes,
	}
	for field, values := range lists {
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				return goerr.Wrap(ErrInvalidConfig, "list entries must not be blank",
					goerr.V(ConfigFieldKey, field))
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration
func (c *EligibilityConfig) Clone() *EligibilityConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.ExcludedDepartments = cloneStrings(c.ExcludedDepartments)
	out.ExcludedTitles = cloneStrings(c.ExcludedTitles)
	out.ExcludedPositions = cloneStrings(c.ExcludedPositions)
	out.CustomRules = CustomEligibilityRules{
		AllowedCompanyCodes:          cloneStrings(c.CustomRules.AllowedCompanyCodes),
		ExcludedCompanyCodes:         cloneStrings(c.CustomRules.ExcludedCompanyCodes),
		MinDirectReportsForExclusion: cloneInt(c.CustomRules.MinDirectReportsForExclusion),
	}
	return &out
}

// EligibilityConfigUpdate is a partial update. Nil fields keep the current value.
type EligibilityConfigUpdate struct {
	MinimumDaysForEligibility *int
	RequireActiveStatus       *bool
	ExcludedDepartments       []string
	ExcludedTitles            []string
	ExcludedPositions         []string
	CustomRules               *CustomEligibilityRules
}

// Apply returns a copy of base with the update applied
func (u *EligibilityConfigUpdate) Apply(base *EligibilityConfig) *EligibilityConfig {
	out := base.Clone()
	if u.MinimumDaysForEligibility != nil {
		out.MinimumDaysForEligibility = *u.MinimumDaysForEligibility
	}
	if u.RequireActiveStatus != nil {
		out.RequireActiveStatus = *u.RequireActiveStatus
	}
	if u.ExcludedDepartments != nil {
		out.ExcludedDepartments = cloneStrings(u.ExcludedDepartments)
	}
	if u.ExcludedTitles != nil {
		out.ExcludedTitles = cloneStrings(u.ExcludedTitles)
	}
	if u.ExcludedPositions != nil {
		out.ExcludedPositions = cloneStrings(u.ExcludedPositions)
	}
	if u.CustomRules != nil {
		out.CustomRules = CustomEligibilityRules{
			AllowedCompanyCodes:          cloneStrings(u.CustomRules.AllowedCompanyCodes),
			ExcludedCompanyCodes:         cloneStrings(u.CustomRules.ExcludedCompanyCodes),
			MinDirectReportsForExclusion: cloneInt(u.CustomRules.MinDirectReportsForExclusion),
		}
	}
	return out
}

func ineligible(rule types.EligibilityRule) EligibilityDecision {
	return EligibilityDecision{Eligible: false, Rule: rule}
}

// containsFold compares after trimming, ignoring case. Blank values never match.
func containsFold(set []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
