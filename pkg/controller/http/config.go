package http

import (
	"net/http"

	"github.com/laurel-hq/laurel/pkg/usecase"
)

func getEligibilityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := uc.Eligibility.Get(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toEligibilityResponse(cfg))
	}
}

func putEligibilityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eligibilityUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		cfg, recompute, err := uc.Eligibility.Upsert(r.Context(), req.toModel())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, configUpdateResponse{
			Config:    toEligibilityResponse(cfg),
			Recompute: recompute,
		})
	}
}

func resetEligibilityHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, recompute, err := uc.Eligibility.Reset(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, configUpdateResponse{
			Config:    toEligibilityResponse(cfg),
			Recompute: recompute,
		})
	}
}

func getVotingGroupHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := uc.VotingGroup.Get(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toVotingGroupResponse(cfg))
	}
}

func putVotingGroupHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req votingGroupUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		cfg, recompute, err := uc.VotingGroup.Upsert(r.Context(), req.toModel())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, configUpdateResponse{
			Config:    toVotingGroupResponse(cfg),
			Recompute: recompute,
		})
	}
}

func resetVotingGroupHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, recompute, err := uc.VotingGroup.Reset(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, configUpdateResponse{
			Config:    toVotingGroupResponse(cfg),
			Recompute: recompute,
		})
	}
}
