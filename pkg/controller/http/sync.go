package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

// runSyncHandler runs a full sync within the request. The sync itself is
// bounded by per-call timeouts, not by the request context.
func runSyncHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := uc.Sync.RunFullSync(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, result)
	}
}

func runSingleSyncHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := uc.Sync.RunSingleEmployeeSync(r.Context(), model.EmployeeID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		status := http.StatusOK
		if !result.Success {
			status = http.StatusNotFound
		}
		writeJSON(r.Context(), w, status, singleSyncResponse{
			Success:             result.Success,
			Message:             result.Message,
			Employee:            toEmployeeResponse(result.Employee),
			MatchedWithExternal: result.MatchedWithExternal,
		})
	}
}

func syncStatusHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := uc.Sync.Status(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := syncStatusResponse{
			Running:    status.Running,
			RosterPath: uc.Sync.RosterPath(),
		}
		if m := status.Metadata; m != nil {
			resp.LastSyncSuccess = zeroAsNil(m.LastSyncSuccess)
			resp.LastSyncAttempt = zeroAsNil(m.LastSyncAttempt)
			resp.EmployeeCount = m.EmployeeCount
			resp.LastPhase = m.LastPhase
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func putRosterHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Path string `json:"path"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			handleError(r.Context(), w, goerr.Wrap(ErrInvalidRequest, "path is required"))
			return
		}

		if err := uc.Sync.SetRosterPath(r.Context(), req.Path); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"path": uc.Sync.RosterPath()})
	}
}
