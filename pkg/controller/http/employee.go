package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

func meHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := uc.Employee.Me(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toEmployeeResponse(e))
	}
}

// listEmployeesHandler supports the active, eligible and votingGroup query
// filters
func listEmployeesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseEmployeeFilter(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		employees, err := uc.Employee.List(r.Context(), filter)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"employees": toEmployeeResponses(employees),
		})
	}
}

func getEmployeeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := uc.Employee.Get(r.Context(), model.EmployeeID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toEmployeeResponse(e))
	}
}

func parseEmployeeFilter(r *http.Request) (model.EmployeeFilter, error) {
	var filter model.EmployeeFilter
	q := r.URL.Query()

	for name, dst := range map[string]**bool{
		"active":   &filter.Active,
		"eligible": &filter.Eligible,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, goerr.Wrap(ErrInvalidRequest, "invalid boolean filter",
				goerr.V("param", name), goerr.V("value", raw))
		}
		*dst = &v
	}

	if q.Has("votingGroup") {
		group := q.Get("votingGroup")
		filter.VotingGroup = &group
	}
	return filter, nil
}
