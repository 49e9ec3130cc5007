package directory

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrFetchFailed is returned when the directory could not be queried.
	// Callers use it to tell an empty result from a failed one.
	ErrFetchFailed = goerr.New("directory fetch failed")

	// ErrEmployeeNotFound is returned by single-record lookups
	ErrEmployeeNotFound = goerr.New("employee not found in directory")
)

// Service provides read access to the authoritative employee directory
type Service interface {
	// ListActiveEmployees returns one page of enabled accounts. An empty
	// pageToken requests the first page; an empty NextPageToken in the
	// result means there are no more pages.
	ListActiveEmployees(ctx context.Context, pageSize int, pageToken string) (*Page, error)

	GetByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error)

	// GetByEmail matches the primary mail or the user principal name
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
}

// Page is one batch of directory employees
type Page struct {
	Employees     []*model.Employee
	NextPageToken string
}
