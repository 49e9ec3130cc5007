package types

import "fmt"

// PeriodStatus represents the lifecycle state of a voting period
type PeriodStatus string

const (
	PeriodStatusUpcoming PeriodStatus = "upcoming"
	PeriodStatusOpen     PeriodStatus = "open"
	PeriodStatusClosed   PeriodStatus = "closed"
)

// AllPeriodStatuses returns all valid period statuses
func AllPeriodStatuses() []PeriodStatus {
	return []PeriodStatus{
		PeriodStatusUpcoming,
		PeriodStatusOpen,
		PeriodStatusClosed,
	}
}

// IsValid checks if the period status is valid
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusUpcoming,
		PeriodStatusOpen,
		PeriodStatusClosed:
		return true
	default:
		return false
	}
}

func (s PeriodStatus) String() string {
	return string(s)
}

// ParsePeriodStatus parses a string into a PeriodStatus
func ParsePeriodStatus(s string) (PeriodStatus, error) {
	status := PeriodStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid period status: %s", s)
	}
	return status, nil
}
