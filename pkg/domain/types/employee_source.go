package types

import "fmt"

// EmployeeSource records which system contributed an employee record
type EmployeeSource string

const (
	EmployeeSourceDirectory EmployeeSource = "directory"
	EmployeeSourceRoster    EmployeeSource = "roster"
	EmployeeSourceMerged    EmployeeSource = "merged"
	EmployeeSourceManual    EmployeeSource = "manual"
)

// AllEmployeeSources returns all valid employee sources
func AllEmployeeSources() []EmployeeSource {
	return []EmployeeSource{
		EmployeeSourceDirectory,
		EmployeeSourceRoster,
		EmployeeSourceMerged,
		EmployeeSourceManual,
	}
}

// IsValid checks if the employee source is valid
func (s EmployeeSource) IsValid() bool {
	switch s {
	case EmployeeSourceDirectory,
		EmployeeSourceRoster,
		EmployeeSourceMerged,
		EmployeeSourceManual:
		return true
	default:
		return false
	}
}

func (s EmployeeSource) String() string {
	return string(s)
}

// ParseEmployeeSource parses a string into an EmployeeSource
func ParseEmployeeSource(s string) (EmployeeSource, error) {
	src := EmployeeSource(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid employee source: %s", s)
	}
	return src, nil
}
