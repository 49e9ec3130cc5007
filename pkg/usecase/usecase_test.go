package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/service/directory"
	"github.com/laurel-hq/laurel/pkg/usecase"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

// mockDirectory serves employees in fixed pages. failAt makes the page with
// that index fail; block, when set, is waited on before the first page.
type mockDirectory struct {
	mu      sync.Mutex
	pages   [][]*model.Employee
	failAt  int
	err     error
	block   chan struct{}
	entered chan struct{}
	calls   int
}

var _ directory.Service = &mockDirectory{}

func newMockDirectory(pages ...[]*model.Employee) *mockDirectory {
	return &mockDirectory{pages: pages, failAt: -1}
}

func (m *mockDirectory) ListActiveEmployees(ctx context.Context, pageSize int, pageToken string) (*directory.Page, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	idx := 0
	if pageToken != "" {
		for i := range m.pages {
			if pageToken == pageTokenFor(i) {
				idx = i
			}
		}
	}

	if idx == 0 && m.block != nil {
		if m.entered != nil {
			close(m.entered)
		}
		<-m.block
	}

	if idx == m.failAt {
		return nil, m.err
	}
	if len(m.pages) == 0 {
		return &directory.Page{}, nil
	}

	page := &directory.Page{Employees: m.pages[idx]}
	if idx+1 < len(m.pages) {
		page.NextPageToken = pageTokenFor(idx + 1)
	}
	return page, nil
}

func (m *mockDirectory) GetByID(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	for _, p := range m.pages {
		for _, e := range p {
			if e.ID == id {
				return e.Clone(), nil
			}
		}
	}
	return nil, directory.ErrEmployeeNotFound
}

func (m *mockDirectory) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	for _, p := range m.pages {
		for _, e := range p {
			if e.Email == email {
				return e.Clone(), nil
			}
		}
	}
	return nil, directory.ErrEmployeeNotFound
}

func pageTokenFor(i int) string {
	return "page-" + string(rune('a'+i))
}

type mockRoster struct {
	records []*model.RosterRecord
	err     error
	path    string
}

func (m *mockRoster) Load(ctx context.Context) ([]*model.RosterRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockRoster) SetPath(path string) {
	m.path = path
}

func (m *mockRoster) Path() string {
	return m.path
}

type mockNotifier struct {
	mu        sync.Mutex
	results   []*model.SyncResult
	announced []*model.VotingPeriod
	winners   [][]*model.Winner
	employees []map[model.EmployeeID]*model.Employee
}

var _ interfaces.Notifier = &mockNotifier{}

func (m *mockNotifier) NotifySyncResult(ctx context.Context, result *model.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

func (m *mockNotifier) AnnounceWinners(ctx context.Context, period *model.VotingPeriod, winners []*model.Winner, employees map[model.EmployeeID]*model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announced = append(m.announced, period)
	m.winners = append(m.winners, winners)
	m.employees = append(m.employees, employees)
	return nil
}

// failingRepository fails employee creates for selected IDs
type failingRepository struct {
	interfaces.Repository
	failCreate map[model.EmployeeID]bool
}

func (r *failingRepository) Employee() interfaces.EmployeeRepository {
	return &failingEmployeeRepository{EmployeeRepository: r.Repository.Employee(), failCreate: r.failCreate}
}

type failingEmployeeRepository struct {
	interfaces.EmployeeRepository
	failCreate map[model.EmployeeID]bool
}

func (r *failingEmployeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	if r.failCreate[e.ID] {
		return nil, context.DeadlineExceeded
	}
	return r.EmployeeRepository.Create(ctx, e)
}

func dirEmployee(id, name, email string, mutate ...func(e *model.Employee)) *model.Employee {
	e := &model.Employee{
		ID:       model.EmployeeID(id),
		FullName: name,
		Email:    email,
		IsActive: true,
		HireDate: daysAgo(365),
		Location: "Austin",
		Source:   types.EmployeeSourceDirectory,
	}
	for _, fn := range mutate {
		fn(e)
	}
	return e
}

func newUseCases(repo interfaces.Repository, opts ...usecase.Option) *usecase.UseCases {
	base := []usecase.Option{usecase.WithClock(fixedClock), usecase.WithInlineDispatch()}
	return usecase.New(repo, append(base, opts...)...)
}
