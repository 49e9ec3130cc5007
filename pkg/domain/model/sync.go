package model

import (
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/types"
)

// SyncOperation names the step a per-record error happened in
type SyncOperation string

const (
	SyncOperationFetch      SyncOperation = "fetch"
	SyncOperationRoster     SyncOperation = "roster"
	SyncOperationCreate     SyncOperation = "create"
	SyncOperationUpdate     SyncOperation = "update"
	SyncOperationDeactivate SyncOperation = "deactivate"
	SyncOperationRecompute  SyncOperation = "recompute"
)

// SyncError is a non-fatal failure recorded during a run. EmployeeID is
// empty for errors not tied to one record.
type SyncError struct {
	EmployeeID EmployeeID    `json:"employeeId,omitempty"`
	Operation  SyncOperation `json:"operation"`
	Message    string        `json:"message"`
}

// SyncResult is the report of one full reconciliation run
type SyncResult struct {
	NewUsers                 int             `json:"newUsers"`
	UpdatedUsers             int             `json:"updatedUsers"`
	DeactivatedUsers         int             `json:"deactivatedUsers"`
	TotalProcessed           int             `json:"totalProcessed"`
	MatchedExternalRecords   int             `json:"matchedExternalRecords"`
	UnmatchedAzureEmployees  int             `json:"unmatchedAzureEmployees"`
	UnmatchedExternalRecords int             `json:"unmatchedExternalRecords"`
	RosterAvailable          bool            `json:"rosterAvailable"`
	DirectoryComplete        bool            `json:"directoryComplete"`
	Phase                    types.SyncPhase `json:"phase"`
	Errors                   []SyncError     `json:"errors"`
	StartedAt                time.Time       `json:"startedAt"`
	FinishedAt               time.Time       `json:"finishedAt"`
}

// AddError records a non-fatal failure
func (r *SyncResult) AddError(id EmployeeID, op SyncOperation, err error) {
	r.Errors = append(r.Errors, SyncError{
		EmployeeID: id,
		Operation:  op,
		Message:    err.Error(),
	})
}

// Changed returns the number of persisted changes
func (r *SyncResult) Changed() int {
	return r.NewUsers + r.UpdatedUsers + r.DeactivatedUsers
}

// SingleSyncResult is the report of refreshing one employee
type SingleSyncResult struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	Employee            *Employee `json:"employee,omitempty"`
	MatchedWithExternal bool      `json:"matchedWithExternal"`
}

// RecomputeResult reports a cascade re-evaluation after a config change
type RecomputeResult struct {
	TotalUpdated int         `json:"totalUpdated"`
	Errors       []SyncError `json:"errors"`
}

// SyncMetadata tracks the health of directory synchronization
type SyncMetadata struct {
	LastSyncSuccess time.Time       // Last successful run
	LastSyncAttempt time.Time       // Last run, successful or not
	EmployeeCount   int             // Directory employees seen at last success
	LastPhase       types.SyncPhase // Terminal phase of the last run
}
