package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrEmployeeNotFound = goerr.New("employee not found")
	ErrPeriodNotFound   = goerr.New("voting period not found")

	// Sync errors
	ErrSyncInProgress         = goerr.New("sync already in progress")
	ErrDirectoryNotConfigured = goerr.New("directory is not configured")
	ErrRosterNotConfigured    = goerr.New("roster is not configured")

	// Period status errors
	ErrPeriodClosed  = goerr.New("voting period is already closed")
	ErrPeriodNotOpen = goerr.New("voting period is not open")

	// Nomination errors
	ErrNominationNotAllowed = goerr.New("nomination not allowed")
	ErrDuplicateNomination  = goerr.New("nominee already nominated by this employee in the period")

	// Access errors
	ErrUnauthenticated = goerr.New("unauthenticated")
	ErrInvalidToken    = goerr.New("invalid access token")
)

// Context keys for error values
const (
	EmployeeIDKey  = "employee_id"
	PeriodIDKey    = "period_id"
	NomineeIDKey   = "nominee_id"
	NominatorIDKey = "nominator_id"
)
