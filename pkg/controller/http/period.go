package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
)

func periodID(r *http.Request) model.PeriodID {
	return model.PeriodID(chi.URLParam(r, "id"))
}

func listPeriodsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periods, err := uc.Voting.ListPeriods(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		now := uc.Voting.Now()
		resp := make([]*periodResponse, len(periods))
		for i, p := range periods {
			resp[i] = toPeriodResponse(p, now)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"periods": resp})
	}
}

func createPeriodHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPeriodRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		p, err := uc.Voting.CreatePeriod(r.Context(), req.Name, req.StartsAt, req.EndsAt)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toPeriodResponse(p, uc.Voting.Now()))
	}
}

func getPeriodHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := uc.Voting.GetPeriod(r.Context(), periodID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toPeriodResponse(p, uc.Voting.Now()))
	}
}

func listNominationsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nominations, err := uc.Voting.ListNominations(r.Context(), periodID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]*nominationResponse, len(nominations))
		for i, n := range nominations {
			resp[i] = toNominationResponse(n)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"nominations": resp})
	}
}

// nominateHandler records a nomination on behalf of the caller, who must be
// a known employee
func nominateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nominateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		me, err := uc.Employee.Me(r.Context())
		if errors.Is(err, usecase.ErrEmployeeNotFound) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusForbidden)
			return
		}
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		n, err := uc.Voting.Nominate(r.Context(), usecase.NominateInput{
			PeriodID:    periodID(r),
			NominatorID: me.ID,
			NomineeID:   model.EmployeeID(req.NomineeID),
			Reason:      req.Reason,
		})
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toNominationResponse(n))
	}
}

func tallyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tally, err := uc.Voting.Tally(r.Context(), periodID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		if tally == nil {
			tally = []model.GroupTally{}
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"groups": tally})
	}
}

func closePeriodHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, winners, err := uc.Voting.ClosePeriod(r.Context(), periodID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"period":  toPeriodResponse(p, uc.Voting.Now()),
			"winners": toWinnerResponses(winners),
		})
	}
}

// listWinnersHandler lists winners of every closed period, or of one period
// with ?periodId=
func listWinnersHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		winners, err := uc.Voting.ListWinners(r.Context(), model.PeriodID(r.URL.Query().Get("periodId")))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{"winners": toWinnerResponses(winners)})
	}
}
