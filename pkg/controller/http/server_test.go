package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpctrl "github.com/laurel-hq/laurel/pkg/controller/http"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/repository/memory"
	"github.com/laurel-hq/laurel/pkg/service/directory"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const (
	adminToken    = "admin-token"
	employeeToken = "employee-token"
	strangerToken = "stranger-token"
)

// mockAuth maps fixed bearer tokens to principals
type mockAuth struct {
	principals map[string]*auth.Principal
}

func newMockAuth() *mockAuth {
	return &mockAuth{principals: map[string]*auth.Principal{
		adminToken: {
			Subject: "ann",
			Email:   "ann@example.com",
			Roles:   []types.Role{types.RoleEmployee, types.RoleAdmin},
		},
		employeeToken: {
			Subject: "bob",
			Email:   "bob@example.com",
			Roles:   []types.Role{types.RoleEmployee},
		},
		strangerToken: {
			Subject: "nobody",
			Email:   "nobody@example.com",
			Roles:   []types.Role{types.RoleEmployee},
		},
	}}
}

func (m *mockAuth) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := m.principals[token]
	if !ok {
		return nil, goerr.Wrap(usecase.ErrInvalidToken, "unknown token")
	}
	return p, nil
}

func (m *mockAuth) IsNoAuthn() bool {
	return false
}

// mockDirectory serves a single page of employees
type mockDirectory struct {
	employees []*model.Employee
}

func (m *mockDirectory) ListActiveEmployees(_ context.Context, _ int, _ string) (*directory.Page, error) {
	out := make([]*model.Employee, len(m.employees))
	for i, e := range m.employees {
		out[i] = e.Clone()
	}
	return &directory.Page{Employees: out}, nil
}

func (m *mockDirectory) GetByID(_ context.Context, id model.EmployeeID) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, goerr.Wrap(directory.ErrEmployeeNotFound, "not found")
}

func (m *mockDirectory) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.employees {
		if strings.EqualFold(e.Email, email) {
			return e.Clone(), nil
		}
	}
	return nil, goerr.Wrap(directory.ErrEmployeeNotFound, "not found")
}

func seedEmployees(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	for _, e := range []*model.Employee{
		{ID: "ann", FullName: "Ann Lee", Email: "ann@example.com", IsActive: true, VotingEligible: true, VotingGroup: "Austin"},
		{ID: "bob", FullName: "Bob Ray", Email: "bob@example.com", IsActive: true, VotingEligible: true, VotingGroup: "Austin"},
		{ID: "cy", FullName: "Cy Vu", Email: "cy@example.com", IsActive: true, VotingEligible: false, EligibilityRule: types.EligibilityRuleTenure, VotingGroup: "Denver"},
	} {
		_, err := repo.Employee().Create(context.Background(), e)
		gt.NoError(t, err).Required()
	}
}

func newServer(t *testing.T, repo interfaces.Repository, ucOpts []usecase.Option, opts ...httpctrl.Options) (*httpctrl.Server, *usecase.UseCases) {
	t.Helper()
	ucOpts = append([]usecase.Option{
		usecase.WithClock(func() time.Time { return testNow }),
		usecase.WithAuth(newMockAuth()),
	}, ucOpts...)
	uc := usecase.New(repo, ucOpts...)
	return httpctrl.New(uc, opts...), uc
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			reader = strings.NewReader(v)
		default:
			raw, err := json.Marshal(v)
			gt.NoError(t, err).Required()
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, memory.New(), nil)

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeBody[map[string]string](t, rec)["status"]).Equal("ok")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("exposes registered collectors", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		srv, _ := newServer(t, memory.New(), []usecase.Option{usecase.WithMetrics(m)}, httpctrl.WithMetrics(reg))

		rec := doRequest(t, srv, http.MethodGet, "/metrics", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("laurel_sync_runs_total")
	})

	t.Run("not mounted without a gatherer", func(t *testing.T) {
		srv, _ := newServer(t, memory.New(), nil)
		rec := doRequest(t, srv, http.MethodGet, "/metrics", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestAuthentication(t *testing.T) {
	repo := memory.New()
	seedEmployees(t, repo)
	srv, _ := newServer(t, repo, nil)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.String(t, decodeBody[map[string]string](t, rec)["error"]).Contains("authentication required")
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees", "forged", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("employee reads", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("employee cannot administer", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/api/sync"},
			{http.MethodGet, "/api/sync/status"},
			{http.MethodPut, "/api/config/eligibility"},
			{http.MethodDelete, "/api/config/voting-groups"},
			{http.MethodPost, "/api/periods"},
		} {
			rec := doRequest(t, srv, tc.method, tc.path, employeeToken, nil)
			gt.Value(t, rec.Code).Equal(http.StatusForbidden)
		}
	})

	t.Run("no-auth mode acts as admin", func(t *testing.T) {
		srv, _ := newServer(t, repo, nil, httpctrl.WithAuth(usecase.NewNoAuthnUseCase("ann", "ann@example.com", "")))
		rec := doRequest(t, srv, http.MethodGet, "/api/sync/status", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("no authenticator rejects everything", func(t *testing.T) {
		uc := usecase.New(repo)
		rec := doRequest(t, httpctrl.New(uc), http.MethodGet, "/api/employees", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestEmployeeRoutes(t *testing.T) {
	repo := memory.New()
	seedEmployees(t, repo)
	srv, _ := newServer(t, repo, nil)

	t.Run("me", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/me", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeBody[map[string]any](t, rec)["fullName"]).Equal("Bob Ray")
	})

	t.Run("me for unknown caller", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/me", strangerToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("filter by eligibility", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees?eligible=false", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		body := decodeBody[struct {
			Employees []struct {
				ID              string `json:"id"`
				EligibilityRule string `json:"eligibilityRule"`
			} `json:"employees"`
		}](t, rec)
		gt.Array(t, body.Employees).Length(1).Required()
		gt.Value(t, body.Employees[0].ID).Equal("cy")
		gt.Value(t, body.Employees[0].EligibilityRule).Equal(string(types.EligibilityRuleTenure))
	})

	t.Run("filter by group", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees?votingGroup=Austin", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		body := decodeBody[map[string][]any](t, rec)
		gt.Array(t, body["employees"]).Length(2)
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees?active=maybe", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees/ann", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeBody[map[string]any](t, rec)["email"]).Equal("ann@example.com")
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/employees/zed", employeeToken, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}
