package usecase_test

import (
	"context"
	"testing"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
	"github.com/laurel-hq/laurel/pkg/repository/memory"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestEmployeeUseCase(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	_, err := repo.Employee().Create(ctx, &model.Employee{ID: "e1", FullName: "Ann Lee", Email: "ann@example.com", IsActive: true, VotingEligible: true})
	gt.NoError(t, err).Required()
	_, err = repo.Employee().Create(ctx, &model.Employee{ID: "e2", FullName: "Bob Ray", Email: "bob@example.com"})
	gt.NoError(t, err).Required()
	uc := newUseCases(repo)

	t.Run("list with filter", func(t *testing.T) {
		active := true
		employees, err := uc.Employee.List(ctx, model.EmployeeFilter{Active: &active})
		gt.NoError(t, err).Required()
		gt.Array(t, employees).Length(1).Required()
		gt.Value(t, employees[0].ID).Equal(model.EmployeeID("e1"))
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := uc.Employee.Get(ctx, "zzz")
		gt.Error(t, err).Is(usecase.ErrEmployeeNotFound)
	})

	t.Run("me by subject", func(t *testing.T) {
		pctx := auth.ContextWithPrincipal(ctx, &auth.Principal{Subject: "e2"})
		me, err := uc.Employee.Me(pctx)
		gt.NoError(t, err).Required()
		gt.Value(t, me.FullName).Equal("Bob Ray")
	})

	t.Run("me by email when subject is unknown", func(t *testing.T) {
		pctx := auth.ContextWithPrincipal(ctx, &auth.Principal{Subject: "aad-9", Email: "ANN@example.com"})
		me, err := uc.Employee.Me(pctx)
		gt.NoError(t, err).Required()
		gt.Value(t, me.ID).Equal(model.EmployeeID("e1"))
	})

	t.Run("me without principal", func(t *testing.T) {
		_, err := uc.Employee.Me(ctx)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("me for a stranger", func(t *testing.T) {
		pctx := auth.ContextWithPrincipal(ctx, &auth.Principal{Subject: "x", Email: "x@example.com"})
		_, err := uc.Employee.Me(pctx)
		gt.Error(t, err).Is(usecase.ErrEmployeeNotFound)
	})
}
