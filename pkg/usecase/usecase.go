package usecase

import (
	"context"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/service/directory"
	"github.com/laurel-hq/laurel/pkg/service/roster"
	"github.com/laurel-hq/laurel/pkg/utils/async"
)

const (
	// DefaultPageSize is the directory page size used by full syncs
	DefaultPageSize = 500

	// DefaultSyncTimeout bounds every external call made by a sync
	DefaultSyncTimeout = 30 * time.Second
)

// Policy holds the configuration used until an administrator saves one, and
// restored by reset
type Policy struct {
	Eligibility *model.EligibilityConfig
	VotingGroup *model.VotingGroupConfig
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() Policy {
	return Policy{
		Eligibility: model.DefaultEligibilityConfig(),
		VotingGroup: model.DefaultVotingGroupConfig(),
	}
}

// dispatchFunc runs background work such as announcements
type dispatchFunc func(ctx context.Context, name string, handler func(ctx context.Context) error)

type UseCases struct {
	repo        interfaces.Repository
	directory   directory.Service
	roster      roster.Loader
	notifier    interfaces.Notifier
	metrics     *metrics.Metrics
	policy      Policy
	now         func() time.Time
	pageSize    int
	syncTimeout time.Duration
	dispatch    dispatchFunc

	Sync        *SyncUseCase
	Eligibility *EligibilityUseCase
	VotingGroup *VotingGroupUseCase
	Employee    *EmployeeUseCase
	Voting      *VotingUseCase
	Auth        AuthUseCaseInterface
}

type Option func(*UseCases)

// WithDirectory sets the directory the sync reads employees from
func WithDirectory(svc directory.Service) Option {
	return func(uc *UseCases) {
		uc.directory = svc
	}
}

// WithRoster sets the HR roster merged into directory records
func WithRoster(loader roster.Loader) Option {
	return func(uc *UseCases) {
		uc.roster = loader
	}
}

// WithNotifier sets where sync reports and winners are published
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithPolicy sets the default eligibility and voting group configuration.
// Nil fields keep the built-in defaults.
func WithPolicy(p Policy) Option {
	return func(uc *UseCases) {
		if p.Eligibility != nil {
			uc.policy.Eligibility = p.Eligibility
		}
		if p.VotingGroup != nil {
			uc.policy.VotingGroup = p.VotingGroup
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func WithPageSize(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.pageSize = n
		}
	}
}

func WithSyncTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		if d > 0 {
			uc.syncTimeout = d
		}
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		policy:      DefaultPolicy(),
		now:         time.Now,
		pageSize:    DefaultPageSize,
		syncTimeout: DefaultSyncTimeout,
		dispatch:    async.Dispatch,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.metrics == nil {
		uc.metrics = metrics.NewNop()
	}

	uc.Eligibility = &EligibilityUseCase{repo: repo, defaults: uc.policy.Eligibility, now: uc.now, metrics: uc.metrics}
	uc.VotingGroup = &VotingGroupUseCase{repo: repo, defaults: uc.policy.VotingGroup, now: uc.now, metrics: uc.metrics}
	uc.Employee = &EmployeeUseCase{repo: repo}
	uc.Sync = newSyncUseCase(uc)
	uc.Voting = &VotingUseCase{
		repo:     repo,
		notifier: uc.notifier,
		metrics:  uc.metrics,
		now:      uc.now,
		dispatch: uc.dispatch,
	}

	return uc
}
