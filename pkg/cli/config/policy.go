package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// PolicyFile is the TOML document holding the default eligibility and
// voting group policy. Omitted keys keep the built-in defaults.
type PolicyFile struct {
	Eligibility  *EligibilityPolicy `toml:"eligibility"`
	VotingGroups *VotingGroupPolicy `toml:"voting_groups"`
}

type EligibilityPolicy struct {
	MinimumDaysForEligibility *int                   `toml:"minimum_days_for_eligibility"`
	RequireActiveStatus       *bool                  `toml:"require_active_status"`
	ExcludedDepartments       []string               `toml:"excluded_departments"`
	ExcludedTitles            []string               `toml:"excluded_titles"`
	ExcludedPositions         []string               `toml:"excluded_positions"`
	CustomRules               *CustomEligibilityRule `toml:"custom_rules"`
}

type CustomEligibilityRule struct {
	AllowedCompanyCodes          []string `toml:"allowed_company_codes"`
	ExcludedCompanyCodes         []string `toml:"excluded_company_codes"`
	MinDirectReportsForExclusion *int     `toml:"min_direct_reports_for_exclusion"`
}

type VotingGroupPolicy struct {
	Strategy         *string           `toml:"strategy"`
	FallbackStrategy *string           `toml:"fallback_strategy"`
	DepartmentGroups map[string]string `toml:"department_groups"`
	LocationGroups   map[string]string `toml:"location_groups"`
	MixedMappings    []MixedMapping    `toml:"mixed_mappings"`
}

type MixedMapping struct {
	Department string `toml:"department"`
	Location   string `toml:"location"`
	Group      string `toml:"group"`
}

// Policy holds the --policy flag
type Policy struct {
	path string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "TOML file with the default eligibility and voting group policy",
			Category:    "Policy",
			Sources:     cli.EnvVars("LAUREL_POLICY"),
			Destination: &x.path,
		},
	}
}

// Path returns the policy file path
func (x *Policy) Path() string {
	return x.path
}

// Configure loads the policy file, or returns the built-in policy when no
// path is set
func (x *Policy) Configure() (usecase.Policy, error) {
	if x.path == "" {
		return usecase.DefaultPolicy(), nil
	}
	return LoadPolicy(x.path)
}

// LoadPolicy reads and validates a policy file
func LoadPolicy(path string) (usecase.Policy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return usecase.Policy{}, goerr.Wrap(ErrConfigNotFound, "policy file not found", goerr.V(ConfigPathKey, path))
	}
	if err != nil {
		return usecase.Policy{}, goerr.Wrap(err, "failed to read policy file", goerr.V(ConfigPathKey, path))
	}

	policy, err := ParsePolicy(data)
	if err != nil {
		return usecase.Policy{}, goerr.Wrap(err, "invalid policy file", goerr.V(ConfigPathKey, path))
	}
	return policy, nil
}

// ParsePolicy decodes a policy document and applies it over the built-in
// defaults. Unknown keys are rejected.
func ParsePolicy(data []byte) (usecase.Policy, error) {
	var file PolicyFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return usecase.Policy{}, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML policy", goerr.V("error", err.Error()))
	}

	policy := usecase.DefaultPolicy()
	if file.Eligibility != nil {
		policy.Eligibility = file.Eligibility.toUpdate().Apply(policy.Eligibility)
	}
	if file.VotingGroups != nil {
		policy.VotingGroup = file.VotingGroups.toUpdate().Apply(policy.VotingGroup)
	}

	if err := policy.Eligibility.Validate(); err != nil {
		return usecase.Policy{}, goerr.Wrap(err, "invalid eligibility policy")
	}
	if err := policy.VotingGroup.Validate(); err != nil {
		return usecase.Policy{}, goerr.Wrap(err, "invalid voting group policy")
	}
	return policy, nil
}

func (p *EligibilityPolicy) toUpdate() *model.EligibilityConfigUpdate {
	u := &model.EligibilityConfigUpdate{
		MinimumDaysForEligibility: p.MinimumDaysForEligibility,
		RequireActiveStatus:       p.RequireActiveStatus,
		ExcludedDepartments:       p.ExcludedDepartments,
		ExcludedTitles:            p.ExcludedTitles,
		ExcludedPositions:         p.ExcludedPositions,
	}
	if p.CustomRules != nil {
		u.CustomRules = &model.CustomEligibilityRules{
			AllowedCompanyCodes:          p.CustomRules.AllowedCompanyCodes,
			ExcludedCompanyCodes:         p.CustomRules.ExcludedCompanyCodes,
			MinDirectReportsForExclusion: p.CustomRules.MinDirectReportsForExclusion,
		}
	}
	return u
}

func (p *VotingGroupPolicy) toUpdate() *model.VotingGroupConfigUpdate {
	u := &model.VotingGroupConfigUpdate{
		DepartmentGroups: p.DepartmentGroups,
		LocationGroups:   p.LocationGroups,
	}
	if p.Strategy != nil {
		s := types.GroupingStrategy(*p.Strategy)
		u.Strategy = &s
	}
	if p.FallbackStrategy != nil {
		f := types.FallbackStrategy(*p.FallbackStrategy)
		u.FallbackStrategy = &f
	}
	if p.MixedMappings != nil {
		u.MixedMappings = make([]model.MixedGroupMapping, len(p.MixedMappings))
		for i, m := range p.MixedMappings {
			u.MixedMappings[i] = model.MixedGroupMapping{
				Department: m.Department,
				Location:   m.Location,
				Group:      m.Group,
			}
		}
	}
	return u
}
