package model

import (
	"strings"
	"time"
)

// RosterRecord is one row of the HR spreadsheet. It carries no email, so it
// can only be joined to an employee by name. RowID is local to a single load.
type RosterRecord struct {
	RowID              int
	FullName           string // "First Last" or "Last, First" as written
	FirstName          string
	MiddleName         string
	LastName           string
	PositionID         string
	CompanyCode        string
	JobTitle           string
	Department         string
	Location           string
	PositionStatus     string
	HireDate           *time.Time
	RehireDate         *time.Time
	ReportsTo          string
	DirectReportsCount *int
}

// Name returns the name used for matching
func (r *RosterRecord) Name() string {
	if r.FullName != "" {
		return r.FullName
	}
	name := r.FirstName
	if r.MiddleName != "" {
		name += " " + r.MiddleName
	}
	if r.LastName != "" {
		name += " " + r.LastName
	}
	return strings.TrimSpace(name)
}
