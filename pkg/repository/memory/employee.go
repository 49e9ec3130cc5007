package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type employeeRepository struct {
	mu        sync.RWMutex
	employees map[model.EmployeeID]*model.Employee
	metadata  *model.SyncMetadata
}

var _ interfaces.EmployeeRepository = &employeeRepository{}

func newEmployeeRepository() *employeeRepository {
	return &employeeRepository{
		employees: make(map[model.EmployeeID]*model.Employee),
		metadata:  &model.SyncMetadata{},
	}
}

func (r *employeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.ID]; ok {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "employee already exists", goerr.V("id", e.ID))
	}

	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r *employeeRepository) Update(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.ID]; !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", e.ID))
	}

	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
	}
	return e.Clone(), nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(email))
	if want != "" {
		for _, e := range r.sorted() {
			if strings.ToLower(strings.TrimSpace(e.Email)) == want {
				return e.Clone(), nil
			}
		}
	}
	return nil, goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("email", email))
}

func (r *employeeRepository) FindAll(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Employee, 0, len(r.employees))
	for _, e := range r.sorted() {
		if filter.Match(e) {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id model.EmployeeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "employee not found", goerr.V("id", id))
	}
	delete(r.employees, id)
	return nil
}

func (r *employeeRepository) GetSyncMetadata(ctx context.Context) (*model.SyncMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadataCopy := *r.metadata
	return &metadataCopy, nil
}

func (r *employeeRepository) SaveSyncMetadata(ctx context.Context, metadata *model.SyncMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadataCopy := *metadata
	r.metadata = &metadataCopy
	return nil
}

// sorted must be called with the lock held
func (r *employeeRepository) sorted() []*model.Employee {
	list := make([]*model.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
