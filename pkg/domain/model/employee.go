package model

import (
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/types"
)

// EmployeeID is the directory object identifier. It is stable across syncs
// once assigned and never derived from the roster.
type EmployeeID string

func (id EmployeeID) String() string {
	return string(id)
}

// Employee is the reconciled employee record stored in the database
type Employee struct {
	ID                 EmployeeID
	FirstName          string
	MiddleName         string
	LastName           string
	FullName           string
	Email              string // cross-system join key when present
	Department         string
	JobTitle           string
	PositionID         string
	Location           string
	CompanyCode        string
	ReportsTo          string
	DirectReportsCount *int // nil = absent; 0 is a real value
	IsActive           bool
	HireDate           *time.Time
	RehireDate         *time.Time // supersedes HireDate for tenure
	Source             types.EmployeeSource
	VotingEligible     bool
	EligibilityRule    types.EligibilityRule // first failing rule, empty when eligible
	VotingGroup        string                // empty = no group
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a deep copy of the employee
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.DirectReportsCount = cloneInt(e.DirectReportsCount)
	c.HireDate = cloneTime(e.HireDate)
	c.RehireDate = cloneTime(e.RehireDate)
	return &c
}

// DisplayName returns the full name, falling back to first and last name
func (e *Employee) DisplayName() string {
	if name := strings.TrimSpace(e.FullName); name != "" {
		return name
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.MiddleName, e.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// TenureStart returns the rehire date when present, otherwise the hire date
func (e *Employee) TenureStart() *time.Time {
	if e.RehireDate != nil {
		return e.RehireDate
	}
	return e.HireDate
}

// EmployeeFilter narrows FindAll results. Nil fields do not filter.
type EmployeeFilter struct {
	Active      *bool
	Eligible    *bool
	VotingGroup *string
}

// Match reports whether the employee satisfies the filter
func (f EmployeeFilter) Match(e *Employee) bool {
	if f.Active != nil && e.IsActive != *f.Active {
		return false
	}
	if f.Eligible != nil && e.VotingEligible != *f.Eligible {
		return false
	}
	if f.VotingGroup != nil && e.VotingGroup != *f.VotingGroup {
		return false
	}
	return true
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
