package usecase

import (
	"context"
	"errors"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
	"github.com/m-mizutani/goerr/v2"
)

// EmployeeUseCase provides read access to reconciled employees
type EmployeeUseCase struct {
	repo interfaces.Repository
}

func (uc *EmployeeUseCase) List(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	employees, err := uc.repo.Employee().FindAll(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}
	return employees, nil
}

func (uc *EmployeeUseCase) Get(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	e, err := uc.repo.Employee().FindByID(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrEmployeeNotFound, "employee not found", goerr.V(EmployeeIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, id))
	}
	return e, nil
}

// Me resolves the caller to an employee, by directory ID first and by
// email second
func (uc *EmployeeUseCase) Me(ctx context.Context) (*model.Employee, error) {
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "no principal in context")
	}
	return uc.resolve(ctx, p)
}

func (uc *EmployeeUseCase) resolve(ctx context.Context, p *auth.Principal) (*model.Employee, error) {
	if p.Subject != "" {
		e, err := uc.repo.Employee().FindByID(ctx, model.EmployeeID(p.Subject))
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, p.Subject))
		}
	}

	if p.Email != "" {
		e, err := uc.repo.Employee().FindByEmail(ctx, p.Email)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to get employee by email")
		}
	}

	return nil, goerr.Wrap(ErrEmployeeNotFound, "caller is not a known employee",
		goerr.V(EmployeeIDKey, p.Subject))
}
