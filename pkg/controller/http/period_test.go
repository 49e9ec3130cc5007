package http_test

import (
	"net/http"
	"testing"
	"time"

	httpctrl "github.com/laurel-hq/laurel/pkg/controller/http"
	"github.com/laurel-hq/laurel/pkg/repository/memory"
	"github.com/m-mizutani/gt"
	"golang.org/x/time/rate"
)

type periodBody struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	ClosedAt *string `json:"closedAt"`
}

func TestPeriodRoutes(t *testing.T) {
	repo := memory.New()
	seedEmployees(t, repo)
	srv, _ := newServer(t, repo, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/periods", adminToken, map[string]any{
		"name":     "March",
		"startsAt": testNow.AddDate(0, 0, -14),
		"endsAt":   testNow.AddDate(0, 0, 16),
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	period := decodeBody[periodBody](t, rec)
	gt.Value(t, period.Status).Equal("open")
	base := "/api/periods/" + period.ID

	t.Run("invalid window", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/periods", adminToken, map[string]any{
			"name":     "Backwards",
			"startsAt": testNow,
			"endsAt":   testNow.Add(-time.Hour),
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("list and get", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/periods", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeBody[map[string][]periodBody](t, rec)["periods"]).Length(1)

		rec = doRequest(t, srv, http.MethodGet, base, employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeBody[periodBody](t, rec).Name).Equal("March")

		rec = doRequest(t, srv, http.MethodGet, "/api/periods/missing", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("nominate as the caller", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/nominations", employeeToken, map[string]string{
			"nomineeId": "ann",
			"reason":    "Mentored the new hires",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		body := decodeBody[map[string]any](t, rec)
		gt.Value(t, body["nominatorId"]).Equal("bob")
		gt.Value(t, body["votingGroup"]).Equal("Austin")
	})

	t.Run("duplicate nomination", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/nominations", employeeToken, map[string]string{
			"nomineeId": "ann",
			"reason":    "Again",
		})
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("rejected nominations", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/nominations", employeeToken, map[string]string{
			"nomineeId": "bob",
			"reason":    "Myself",
		})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)

		rec = doRequest(t, srv, http.MethodPost, base+"/nominations", employeeToken, map[string]string{
			"nomineeId": "cy",
			"reason":    "Ineligible",
		})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)

		rec = doRequest(t, srv, http.MethodPost, base+"/nominations", employeeToken, map[string]string{
			"nomineeId": "ann",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("caller must be an employee", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/nominations", strangerToken, map[string]string{
			"nomineeId": "ann",
			"reason":    "Great work",
		})
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("nominations and tally are admin only", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, base+"/nominations", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)

		rec = doRequest(t, srv, http.MethodGet, base+"/nominations", adminToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeBody[map[string][]any](t, rec)["nominations"]).Length(1)

		rec = doRequest(t, srv, http.MethodGet, base+"/tally", adminToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeBody[map[string][]any](t, rec)["groups"]).Length(1)
	})

	t.Run("close announces winners", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/close", adminToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		body := decodeBody[struct {
			Period  periodBody `json:"period"`
			Winners []struct {
				EmployeeID string `json:"employeeId"`
				Score      int    `json:"score"`
			} `json:"winners"`
		}](t, rec)
		gt.Value(t, body.Period.Status).Equal("closed")
		gt.Array(t, body.Winners).Length(1).Required()
		gt.Value(t, body.Winners[0].EmployeeID).Equal("ann")

		rec = doRequest(t, srv, http.MethodPost, base+"/close", adminToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusConflict)

		rec = doRequest(t, srv, http.MethodGet, "/api/winners?periodId="+period.ID, employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeBody[map[string][]any](t, rec)["winners"]).Length(1)
	})

	t.Run("closed period rejects nominations", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/nominations", adminToken, map[string]string{
			"nomineeId": "bob",
			"reason":    "Late",
		})
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
	})
}

func TestNominationRateLimit(t *testing.T) {
	repo := memory.New()
	seedEmployees(t, repo)
	srv, uc := newServer(t, repo, nil, httpctrl.WithRateLimit(rate.Every(time.Hour), 1))

	p, err := uc.Voting.CreatePeriod(t.Context(), "March", testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 10))
	gt.NoError(t, err).Required()
	path := "/api/periods/" + string(p.ID) + "/nominations"

	rec := doRequest(t, srv, http.MethodPost, path, employeeToken, map[string]string{"nomineeId": "ann", "reason": "First"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doRequest(t, srv, http.MethodPost, path, employeeToken, map[string]string{"nomineeId": "ann", "reason": "Second"})
	gt.Value(t, rec.Code).Equal(http.StatusTooManyRequests)
	gt.String(t, rec.Header().Get("Retry-After")).NotEqual("")

	// buckets are per caller
	rec = doRequest(t, srv, http.MethodPost, path, adminToken, map[string]string{"nomineeId": "bob", "reason": "Other caller"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
}
