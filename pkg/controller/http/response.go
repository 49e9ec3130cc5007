package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// maxBodySize caps request bodies. Policy documents are the largest payload.
const maxBodySize = 1 << 20

// ErrInvalidRequest is returned for bodies and parameters that cannot be parsed
var ErrInvalidRequest = goerr.New("invalid request")

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// decodeJSON reads the request body into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerr.Wrap(ErrInvalidRequest, "failed to decode request body", goerr.V("error", err.Error()))
	}
	return nil
}

// errorStatus maps domain and use case errors to an HTTP status
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidConfig),
		errors.Is(err, model.ErrMalformedMapping),
		errors.Is(err, model.ErrInvalidPeriod),
		errors.Is(err, model.ErrInvalidNomination):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrUnauthenticated),
		errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrEmployeeNotFound),
		errors.Is(err, usecase.ErrPeriodNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrSyncInProgress),
		errors.Is(err, usecase.ErrDuplicateNomination),
		errors.Is(err, usecase.ErrPeriodClosed):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrPeriodNotOpen),
		errors.Is(err, usecase.ErrNominationNotAllowed):
		return http.StatusUnprocessableEntity

	case errors.Is(err, usecase.ErrDirectoryNotConfigured),
		errors.Is(err, usecase.ErrRosterNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, errorStatus(err))
}
