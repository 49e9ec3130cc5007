package interfaces

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
)

// EmployeeRepository stores reconciled employee records.
//
// Writes are issued one record at a time by the sync orchestrator so that a
// failure can be attributed to a single employee.
type EmployeeRepository interface {
	// Create stores a new employee. Returns ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, e *model.Employee) (*model.Employee, error)

	// Update replaces an existing employee. Returns ErrNotFound if absent.
	Update(ctx context.Context, e *model.Employee) (*model.Employee, error)

	FindByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error)

	// FindByEmail matches case-insensitively. Returns ErrNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)

	// FindAll returns employees matching the filter ordered by ID
	FindAll(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error)

	Delete(ctx context.Context, id model.EmployeeID) error

	// GetSyncMetadata returns zero values when no sync has run yet
	GetSyncMetadata(ctx context.Context) (*model.SyncMetadata, error)
	SaveSyncMetadata(ctx context.Context, metadata *model.SyncMetadata) error
}
