package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// VotingGroupConfigKey is the singleton key of the voting group configuration
const VotingGroupConfigKey = "voting_group"

// unknownValue marks a directory field that was filled with a placeholder
const unknownValue = "unknown"

// VotingGroupConfig decides which group an employee votes and is voted in
type VotingGroupConfig struct {
	Version          int
	Strategy         types.GroupingStrategy
	DepartmentGroups map[string]string // department -> group
	LocationGroups   map[string]string // location -> group
	MixedMappings    []MixedGroupMapping
	FallbackStrategy types.FallbackStrategy
	UpdatedAt        time.Time
}

// MixedGroupMapping assigns a group to a department and location pair
type MixedGroupMapping struct {
	Department string `json:"department"`
	Location   string `json:"location"`
	Group      string `json:"group"`
}

// DefaultVotingGroupConfig groups by location with no fallback
func DefaultVotingGroupConfig() *VotingGroupConfig {
	return &VotingGroupConfig{
		Version:          1,
		Strategy:         types.GroupingStrategyLocation,
		DepartmentGroups: map[string]string{},
		LocationGroups:   map[string]string{},
		FallbackStrategy: types.FallbackStrategyNone,
	}
}

// Assign returns the voting group for the employee. The second value is
// false when the employee belongs to no group.
func (c *VotingGroupConfig) Assign(e *Employee) (string, bool) {
	switch c.Strategy {
	case types.GroupingStrategyLocation:
		return groupValue(e.Location)
	case types.GroupingStrategyDepartment:
		return groupValue(e.Department)
	case types.GroupingStrategyCustom, types.GroupingStrategyMixed:
		if g, ok := c.lookupMappings(e); ok {
			return g, true
		}
		return c.fallback(e)
	default:
		return "", false
	}
}

// ApplyVotingGroup assigns the group and stores it on the employee.
// Returns true when the stored group changed.
func ApplyVotingGroup(e *Employee, cfg *VotingGroupConfig) bool {
	g, _ := cfg.Assign(e)
	changed := e.VotingGroup != g
	e.VotingGroup = g
	return changed
}

// lookupMappings tries mixed pairs first, then location, then department
func (c *VotingGroupConfig) lookupMappings(e *Employee) (string, bool) {
	dept := mappingKey(e.Department)
	loc := mappingKey(e.Location)

	if dept != "" && loc != "" {
		for _, m := range c.MixedMappings {
			if mappingKey(m.Department) == dept && mappingKey(m.Location) == loc {
				return strings.TrimSpace(m.Group), true
			}
		}
	}
	if loc != "" {
		for k, g := range c.LocationGroups {
			if mappingKey(k) == loc {
				return strings.TrimSpace(g), true
			}
		}
	}
	if dept != "" {
		for k, g := range c.DepartmentGroups {
			if mappingKey(k) == dept {
				return strings.TrimSpace(g), true
			}
		}
	}
	return "", false
}

func (c *VotingGroupConfig) fallback(e *Employee) (string, bool) {
	switch c.FallbackStrategy {
	case types.FallbackStrategyLocation:
		return groupValue(e.Location)
	case types.FallbackStrategyDepartment:
		return groupValue(e.Department)
	default:
		return "", false
	}
}

// Validate checks the configuration shape. Mapping keys must stay unique
// after normalization so that lookups are deterministic.
func (c *VotingGroupConfig) Validate() error {
	if !c.Strategy.IsValid() {
		return goerr.Wrap(ErrInvalidConfig, "invalid grouping strategy",
			goerr.V(ConfigFieldKey, "strategy"), goerr.V(ConfigValueKey, c.Strategy))
	}
	if !c.FallbackStrategy.IsValid() {
		return goerr.Wrap(ErrInvalidConfig, "invalid fallback strategy",
			goerr.V(ConfigFieldKey, "fallbackStrategy"), goerr.V(ConfigValueKey, c.FallbackStrategy))
	}

	tables := map[string]map[string]string{
		"departmentGroups": c.DepartmentGroups,
		"locationGroups":   c.LocationGroups,
	}
	for field, table := range tables {
		seen := make(map[string]bool, len(table))
		for k, g := range table {
			key := mappingKey(k)
			if key == "" || strings.TrimSpace(g) == "" {
				return goerr.Wrap(ErrInvalidConfig, "mapping key and group must not be blank",
					goerr.V(ConfigFieldKey, field), goerr.V(ConfigValueKey, k))
			}
			if seen[key] {
				return goerr.Wrap(ErrInvalidConfig, "duplicate mapping key",
					goerr.V(ConfigFieldKey, field), goerr.V(ConfigValueKey, k))
			}
			seen[key] = true
		}
	}

	seen := make(map[[2]string]bool, len(c.MixedMappings))
	for i, m := range c.MixedMappings {
		pair := [2]string{mappingKey(m.Department), mappingKey(m.Location)}
		if pair[0] == "" || pair[1] == "" || strings.TrimSpace(m.Group) == "" {
			return goerr.Wrap(ErrInvalidConfig, "mixed mapping requires department, location and group",
				goerr.V(ConfigFieldKey, "mixedMappings"), goerr.V("index", i))
		}
		if seen[pair] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate mixed mapping",
				goerr.V(ConfigFieldKey, "mixedMappings"), goerr.V("index", i))
		}
		seen[pair] = true
	}

	return nil
}

// Clone returns a deep copy of the configuration
func (c *VotingGroupConfig) Clone() *VotingGroupConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.DepartmentGroups = cloneMap(c.DepartmentGroups)
	out.LocationGroups = cloneMap(c.LocationGroups)
	if c.MixedMappings != nil {
		out.MixedMappings = make([]MixedGroupMapping, len(c.MixedMappings))
		copy(out.MixedMappings, c.MixedMappings)
	}
	return &out
}

// VotingGroupConfigUpdate is a partial update. Nil fields keep the current
// value; an empty non-nil map or slice clears it.
type VotingGroupConfigUpdate struct {
	Strategy         *types.GroupingStrategy
	DepartmentGroups map[string]string
	LocationGroups   map[string]string
	MixedMappings    []MixedGroupMapping
	FallbackStrategy *types.FallbackStrategy
}

// Apply returns a copy of base with the update applied
func (u *VotingGroupConfigUpdate) Apply(base *VotingGroupConfig) *VotingGroupConfig {
	out := base.Clone()
	if u.Strategy != nil {
		out.Strategy = *u.Strategy
	}
	if u.DepartmentGroups != nil {
		out.DepartmentGroups = cloneMap(u.DepartmentGroups)
	}
	if u.LocationGroups != nil {
		out.LocationGroups = cloneMap(u.LocationGroups)
	}
	if u.MixedMappings != nil {
		out.MixedMappings = make([]MixedGroupMapping, len(u.MixedMappings))
		copy(out.MixedMappings, u.MixedMappings)
	}
	if u.FallbackStrategy != nil {
		out.FallbackStrategy = *u.FallbackStrategy
	}
	return out
}

// EncodeMixedMappings serializes mappings for storage
func EncodeMixedMappings(mappings []MixedGroupMapping) (string, error) {
	if len(mappings) == 0 {
		return "", nil
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode mixed mappings")
	}
	return string(data), nil
}

// DecodeMixedMappings parses stored mappings. An empty string is an empty set.
func DecodeMixedMappings(raw string) ([]MixedGroupMapping, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var mappings []MixedGroupMapping
	if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
		return nil, goerr.Wrap(ErrMalformedMapping, "failed to decode mixed mappings",
			goerr.V("error", err.Error()))
	}
	return mappings, nil
}

// groupValue returns the trimmed, whitespace-collapsed value. Blank and
// "Unknown" placeholders mean no group.
func groupValue(v string) (string, bool) {
	v = strings.Join(strings.Fields(v), " ")
	if v == "" || strings.EqualFold(v, unknownValue) {
		return "", false
	}
	return v, true
}

func mappingKey(v string) string {
	g, ok := groupValue(v)
	if !ok {
		return ""
	}
	return strings.ToLower(g)
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
