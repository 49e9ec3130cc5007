package types

import "fmt"

// GroupingStrategy selects how an employee's voting group is derived
type GroupingStrategy string

const (
	GroupingStrategyLocation   GroupingStrategy = "location"
	GroupingStrategyDepartment GroupingStrategy = "department"
	GroupingStrategyCustom     GroupingStrategy = "custom"
	GroupingStrategyMixed      GroupingStrategy = "mixed"
)

// AllGroupingStrategies returns all valid grouping strategies
func AllGroupingStrategies() []GroupingStrategy {
	return []GroupingStrategy{
		GroupingStrategyLocation,
		GroupingStrategyDepartment,
		GroupingStrategyCustom,
		GroupingStrategyMixed,
	}
}

// IsValid checks if the grouping strategy is valid
func (s GroupingStrategy) IsValid() bool {
	switch s {
	case GroupingStrategyLocation,
		GroupingStrategyDepartment,
		GroupingStrategyCustom,
		GroupingStrategyMixed:
		return true
	default:
		return false
	}
}

// UsesMappings reports whether the strategy consults the explicit mapping tables
func (s GroupingStrategy) UsesMappings() bool {
	return s == GroupingStrategyCustom || s == GroupingStrategyMixed
}

func (s GroupingStrategy) String() string {
	return string(s)
}

// ParseGroupingStrategy parses a string into a GroupingStrategy
func ParseGroupingStrategy(s string) (GroupingStrategy, error) {
	strategy := GroupingStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid grouping strategy: %s", s)
	}
	return strategy, nil
}

// FallbackStrategy is applied when custom or mixed mappings do not match
type FallbackStrategy string

const (
	FallbackStrategyLocation   FallbackStrategy = "location"
	FallbackStrategyDepartment FallbackStrategy = "department"
	FallbackStrategyNone       FallbackStrategy = "none"
)

// AllFallbackStrategies returns all valid fallback strategies
func AllFallbackStrategies() []FallbackStrategy {
	return []FallbackStrategy{
		FallbackStrategyLocation,
		FallbackStrategyDepartment,
		FallbackStrategyNone,
	}
}

// IsValid checks if the fallback strategy is valid
func (s FallbackStrategy) IsValid() bool {
	switch s {
	case FallbackStrategyLocation,
		FallbackStrategyDepartment,
		FallbackStrategyNone:
		return true
	default:
		return false
	}
}

func (s FallbackStrategy) String() string {
	return string(s)
}

// ParseFallbackStrategy parses a string into a FallbackStrategy
func ParseFallbackStrategy(s string) (FallbackStrategy, error) {
	strategy := FallbackStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid fallback strategy: %s", s)
	}
	return strategy, nil
}
