package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/reconcile"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/service/directory"
	"github.com/laurel-hq/laurel/pkg/service/roster"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/semaphore"
)

// MaxDirectoryRecords caps a single directory listing. Reaching the cap is
// treated like a failed later page.
const MaxDirectoryRecords = 10000

// SyncUseCase reconciles the directory and the HR roster into the employee
// store. At most one full sync runs at a time.
type SyncUseCase struct {
	repo        interfaces.Repository
	directory   directory.Service
	roster      roster.Loader
	eligibility *EligibilityUseCase
	votingGroup *VotingGroupUseCase
	notifier    interfaces.Notifier
	metrics     *metrics.Metrics
	now         func() time.Time
	pageSize    int
	timeout     time.Duration
	lock        *semaphore.Weighted
	running     atomic.Bool
}

func newSyncUseCase(uc *UseCases) *SyncUseCase {
	return &SyncUseCase{
		repo:        uc.repo,
		directory:   uc.directory,
		roster:      uc.roster,
		eligibility: uc.Eligibility,
		votingGroup: uc.VotingGroup,
		notifier:    uc.notifier,
		metrics:     uc.metrics,
		now:         uc.now,
		pageSize:    uc.pageSize,
		timeout:     uc.syncTimeout,
		lock:        semaphore.NewWeighted(1),
	}
}

// SyncStatus is the persisted health of synchronization plus whether a run
// is in flight now
type SyncStatus struct {
	Metadata *model.SyncMetadata
	Running  bool
}

type syncOpKind int

const (
	syncOpCreate syncOpKind = iota
	syncOpUpdate
	syncOpDeactivate
)

type syncOp struct {
	kind     syncOpKind
	employee *model.Employee
}

// RunFullSync runs one reconciliation. The returned result is non-nil
// whenever the run started, including failed runs; err is set only for
// fatal failures.
func (uc *SyncUseCase) RunFullSync(ctx context.Context) (*model.SyncResult, error) {
	if uc.directory == nil {
		return nil, goerr.Wrap(ErrDirectoryNotConfigured, "cannot run full sync")
	}
	if !uc.lock.TryAcquire(1) {
		return nil, goerr.Wrap(ErrSyncInProgress, "cannot start full sync")
	}
	defer uc.lock.Release(1)
	uc.running.Store(true)
	defer uc.running.Store(false)

	logger := logging.From(ctx)
	result := &model.SyncResult{
		StartedAt:         uc.now(),
		Phase:             types.SyncPhaseFetching,
		DirectoryComplete: true,
		Errors:            []model.SyncError{},
	}

	directoryCount, err := uc.runPhases(ctx, result)
	result.FinishedAt = uc.now()
	if err != nil {
		result.Phase = types.SyncPhaseFailed
		logger.Error("Full sync failed", slog.Any("error", err))
	} else {
		result.Phase = types.SyncPhaseDone
		logger.Info("Full sync finished",
			slog.Int("new", result.NewUsers),
			slog.Int("updated", result.UpdatedUsers),
			slog.Int("deactivated", result.DeactivatedUsers),
			slog.Int("processed", result.TotalProcessed),
			slog.Int("errors", len(result.Errors)),
			slog.Bool("roster_available", result.RosterAvailable),
			slog.Bool("directory_complete", result.DirectoryComplete),
		)
	}

	uc.finish(ctx, result, directoryCount)
	return result, err
}

func (uc *SyncUseCase) runPhases(ctx context.Context, result *model.SyncResult) (int, error) {
	eligibility, err := uc.eligibility.Get(ctx)
	if err != nil {
		return 0, err
	}
	groups, err := uc.votingGroup.Get(ctx)
	if err != nil {
		return 0, err
	}

	// fetching
	records := uc.loadRoster(ctx, result)
	employees, err := uc.fetchDirectory(ctx, result)
	if err != nil {
		return 0, err
	}

	// matching and evaluating
	result.Phase = types.SyncPhaseMatching
	matcher := reconcile.NewMatcher(records)
	matchedRows := make(map[*model.RosterRecord]struct{})
	reconciled := make([]*model.Employee, 0, len(employees))
	for _, e := range employees {
		match := matcher.Resolve(e)
		if match.Kind.Matched() {
			result.MatchedExternalRecords++
			matchedRows[match.Record] = struct{}{}
		} else {
			result.UnmatchedAzureEmployees++
		}
		reconciled = append(reconciled, reconcile.Merge(e, match.Record))
	}
	result.UnmatchedExternalRecords = len(records) - len(matchedRows)

	result.Phase = types.SyncPhaseEvaluating
	now := uc.now()
	for _, e := range reconciled {
		e.IsActive = true
		if e.Source == "" {
			e.Source = types.EmployeeSourceDirectory
		}
		model.ApplyEligibility(e, eligibility, now)
		model.ApplyVotingGroup(e, groups)
	}
	result.TotalProcessed = len(reconciled)

	// diffing
	result.Phase = types.SyncPhaseDiffing
	stored, err := uc.repo.Employee().FindAll(ctx, model.EmployeeFilter{})
	if err != nil {
		return len(employees), goerr.Wrap(err, "failed to list stored employees")
	}
	ops := diffEmployees(stored, reconciled, result.DirectoryComplete, func(e *model.Employee) {
		model.ApplyEligibility(e, eligibility, now)
		model.ApplyVotingGroup(e, groups)
	})

	// persisting
	result.Phase = types.SyncPhasePersisting
	uc.persist(ctx, ops, result, now)

	return len(employees), nil
}

// loadRoster returns the roster rows, or none when the roster is not
// configured or cannot be read
func (uc *SyncUseCase) loadRoster(ctx context.Context, result *model.SyncResult) []*model.RosterRecord {
	if uc.roster == nil {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	records, err := uc.roster.Load(tctx)
	if err != nil {
		logging.From(ctx).Warn("Roster unavailable, syncing with directory data only",
			slog.String("path", uc.roster.Path()),
			slog.Any("error", err),
		)
		result.AddError("", model.SyncOperationRoster, err)
		uc.metrics.SyncErrors.WithLabelValues(string(model.SyncOperationRoster)).Inc()
		return nil
	}

	result.RosterAvailable = true
	return records
}

// fetchDirectory pages through the directory. A failure on the first page
// is fatal. A later failure, a repeated page token, receiving
// MaxDirectoryRecords records or exceeding the matching page count keeps
// what was read and marks the listing incomplete. Duplicates count toward
// the cap.
func (uc *SyncUseCase) fetchDirectory(ctx context.Context, result *model.SyncResult) ([]*model.Employee, error) {
	var (
		employees []*model.Employee
		seen      = make(map[model.EmployeeID]struct{})
		tokens    = make(map[string]struct{})
		received  int
		token     string
	)

	maxPages := MaxDirectoryRecords/max(uc.pageSize, 1) + 1

	incomplete := func(err error) {
		result.AddError("", model.SyncOperationFetch, err)
		uc.metrics.SyncErrors.WithLabelValues(string(model.SyncOperationFetch)).Inc()
		result.DirectoryComplete = false
	}

	for page := 0; ; page++ {
		tctx, cancel := context.WithTimeout(ctx, uc.timeout)
		p, err := uc.directory.ListActiveEmployees(tctx, uc.pageSize, token)
		cancel()

		if err != nil {
			if page == 0 {
				return nil, goerr.Wrap(err, "failed to fetch first directory page")
			}
			logging.From(ctx).Warn("Directory listing interrupted, deactivation disabled for this run",
				slog.Int("page", page),
				slog.Int("fetched", len(employees)),
				slog.Any("error", err),
			)
			incomplete(err)
			return employees, nil
		}

		truncated := false
		for _, e := range p.Employees {
			if received >= MaxDirectoryRecords {
				truncated = true
				break
			}
			received++
			if _, dup := seen[e.ID]; dup || e.ID == "" {
				continue
			}
			seen[e.ID] = struct{}{}
			employees = append(employees, e)
		}

		if received >= MaxDirectoryRecords {
			if truncated || p.NextPageToken != "" {
				incomplete(goerr.New("directory listing truncated", goerr.V("limit", MaxDirectoryRecords)))
			}
			return employees, nil
		}

		if p.NextPageToken == "" {
			return employees, nil
		}
		if _, repeated := tokens[p.NextPageToken]; repeated {
			logging.From(ctx).Warn("Directory returned a page token twice, deactivation disabled for this run",
				slog.Int("page", page),
				slog.Int("fetched", len(employees)),
			)
			incomplete(goerr.New("directory page token repeated", goerr.V("page", page)))
			return employees, nil
		}
		if page+1 >= maxPages {
			incomplete(goerr.New("directory page limit reached", goerr.V("pages", maxPages)))
			return employees, nil
		}
		tokens[p.NextPageToken] = struct{}{}
		token = p.NextPageToken
	}
}

// diffEmployees pairs reconciled records with stored ones by ID, then by
// email. A record paired by email keeps the stored ID. Stored active
// employees absent from the listing are deactivated only when the listing
// is complete; reevaluate refreshes their eligibility and group.
func diffEmployees(stored, reconciled []*model.Employee, complete bool, reevaluate func(e *model.Employee)) []syncOp {
	byID := make(map[model.EmployeeID]*model.Employee, len(stored))
	byEmail := make(map[string]*model.Employee, len(stored))
	for _, s := range stored {
		byID[s.ID] = s
		if key := emailKey(s.Email); key != "" {
			if _, ok := byEmail[key]; !ok {
				byEmail[key] = s
			}
		}
	}

	var ops []syncOp
	paired := make(map[model.EmployeeID]struct{}, len(reconciled))
	for _, e := range reconciled {
		current, ok := byID[e.ID]
		if !ok {
			if s, found := byEmail[emailKey(e.Email)]; found && emailKey(e.Email) != "" {
				if _, taken := paired[s.ID]; !taken {
					current = s
					e.ID = s.ID
				}
			}
		}

		if current == nil {
			ops = append(ops, syncOp{kind: syncOpCreate, employee: e})
			continue
		}
		paired[current.ID] = struct{}{}

		if employeeChanged(current, e) {
			e.CreatedAt = current.CreatedAt
			ops = append(ops, syncOp{kind: syncOpUpdate, employee: e})
		}
	}

	if !complete {
		return ops
	}

	for _, s := range stored {
		if _, ok := paired[s.ID]; ok || !s.IsActive {
			continue
		}
		d := s.Clone()
		d.IsActive = false
		reevaluate(d)
		ops = append(ops, syncOp{kind: syncOpDeactivate, employee: d})
	}
	return ops
}

func (uc *SyncUseCase) persist(ctx context.Context, ops []syncOp, result *model.SyncResult, now time.Time) {
	repo := uc.repo.Employee()

	for _, op := range ops {
		e := op.employee
		e.UpdatedAt = now

		var (
			operation model.SyncOperation
			err       error
		)
		started := time.Now()
		tctx, cancel := context.WithTimeout(ctx, uc.timeout)
		switch op.kind {
		case syncOpCreate:
			operation = model.SyncOperationCreate
			e.CreatedAt = now
			_, err = repo.Create(tctx, e)
		case syncOpUpdate:
			operation = model.SyncOperationUpdate
			_, err = repo.Update(tctx, e)
		case syncOpDeactivate:
			operation = model.SyncOperationDeactivate
			_, err = repo.Update(tctx, e)
		}
		cancel()
		uc.metrics.RepoQueryDuration.WithLabelValues(string(operation)).Observe(time.Since(started).Seconds())

		if err != nil {
			logging.From(ctx).Warn("Failed to persist employee",
				slog.String("employee_id", e.ID.String()),
				slog.String("operation", string(operation)),
				slog.Any("error", err),
			)
			result.AddError(e.ID, operation, err)
			uc.metrics.SyncErrors.WithLabelValues(string(operation)).Inc()
			continue
		}

		uc.metrics.RecordsChanged.WithLabelValues(string(operation)).Inc()
		switch op.kind {
		case syncOpCreate:
			result.NewUsers++
		case syncOpUpdate:
			result.UpdatedUsers++
		case syncOpDeactivate:
			result.DeactivatedUsers++
		}
	}
}

// finish records metadata and metrics and publishes the report. None of
// these steps can fail the run.
func (uc *SyncUseCase) finish(ctx context.Context, result *model.SyncResult, directoryCount int) {
	status := "success"
	switch {
	case result.Phase == types.SyncPhaseFailed:
		status = "failure"
	case len(result.Errors) > 0 || !result.DirectoryComplete:
		status = "partial"
	}
	uc.metrics.SyncRuns.WithLabelValues(status).Inc()
	uc.metrics.SyncDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	meta, err := uc.repo.Employee().GetSyncMetadata(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to get sync metadata")
		meta = &model.SyncMetadata{}
	}
	meta.LastSyncAttempt = result.StartedAt
	meta.LastPhase = result.Phase
	if result.Phase == types.SyncPhaseDone {
		meta.LastSyncSuccess = result.FinishedAt
		meta.EmployeeCount = directoryCount
		uc.metrics.LastSuccessfulRun.Set(float64(result.FinishedAt.Unix()))
	}
	if err := uc.repo.Employee().SaveSyncMetadata(ctx, meta); err != nil {
		errutil.Handle(ctx, err, "failed to save sync metadata")
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifySyncResult(ctx, result); err != nil {
			errutil.Handle(ctx, err, "failed to notify sync result")
		}
	}
}

// RunSingleEmployeeSync refreshes one employee from the directory and the
// roster. A directory miss is reported in the result, not as an error.
func (uc *SyncUseCase) RunSingleEmployeeSync(ctx context.Context, id model.EmployeeID) (*model.SingleSyncResult, error) {
	if uc.directory == nil {
		return nil, goerr.Wrap(ErrDirectoryNotConfigured, "cannot sync employee", goerr.V(EmployeeIDKey, id))
	}

	eligibility, err := uc.eligibility.Get(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := uc.votingGroup.Get(ctx)
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, uc.timeout)
	fetched, err := uc.directory.GetByID(tctx, id)
	cancel()
	if errors.Is(err, directory.ErrEmployeeNotFound) {
		return &model.SingleSyncResult{
			Success: false,
			Message: "employee not found in directory",
		}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch employee from directory", goerr.V(EmployeeIDKey, id))
	}

	var discard model.SyncResult
	match := reconcile.NewMatcher(uc.loadRoster(ctx, &discard)).Resolve(fetched)

	now := uc.now()
	e := reconcile.Merge(fetched, match.Record)
	e.IsActive = fetched.IsActive
	if e.Source == "" {
		e.Source = types.EmployeeSourceDirectory
	}
	model.ApplyEligibility(e, eligibility, now)
	model.ApplyVotingGroup(e, groups)
	e.UpdatedAt = now

	repo := uc.repo.Employee()
	current, err := repo.FindByID(ctx, e.ID)
	if errors.Is(err, interfaces.ErrNotFound) && e.Email != "" {
		current, err = repo.FindByEmail(ctx, e.Email)
		if err == nil {
			e.ID = current.ID
		}
	}

	result := &model.SingleSyncResult{Success: true, MatchedWithExternal: match.Kind.Matched()}
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		e.CreatedAt = now
		if _, err := repo.Create(ctx, e); err != nil {
			return nil, goerr.Wrap(err, "failed to create employee", goerr.V(EmployeeIDKey, e.ID))
		}
		result.Message = "employee created"
	case err != nil:
		return nil, goerr.Wrap(err, "failed to look up stored employee", goerr.V(EmployeeIDKey, e.ID))
	case employeeChanged(current, e):
		e.CreatedAt = current.CreatedAt
		if _, err := repo.Update(ctx, e); err != nil {
			return nil, goerr.Wrap(err, "failed to update employee", goerr.V(EmployeeIDKey, e.ID))
		}
		result.Message = "employee updated"
	default:
		e = current
		result.Message = "employee unchanged"
	}

	result.Employee = e
	logging.From(ctx).Info("Single employee sync finished",
		slog.String("employee_id", e.ID.String()),
		slog.String("message", result.Message),
		slog.Bool("matched_with_external", result.MatchedWithExternal),
	)
	return result, nil
}

// Status returns the sync metadata and whether a run is in progress
func (uc *SyncUseCase) Status(ctx context.Context) (*SyncStatus, error) {
	meta, err := uc.repo.Employee().GetSyncMetadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sync metadata")
	}

	return &SyncStatus{Metadata: meta, Running: uc.running.Load()}, nil
}

// SetRosterPath points the roster loader at another export
func (uc *SyncUseCase) SetRosterPath(ctx context.Context, path string) error {
	if uc.roster == nil {
		return goerr.Wrap(ErrRosterNotConfigured, "cannot change roster path")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return goerr.New("roster path is required")
	}

	previous := uc.roster.Path()
	uc.roster.SetPath(path)
	logging.From(ctx).Info("Roster path changed",
		slog.String("from", previous),
		slog.String("to", path),
	)
	return nil
}

// RosterPath returns the current roster location, empty when not configured
func (uc *SyncUseCase) RosterPath() string {
	if uc.roster == nil {
		return ""
	}
	return uc.roster.Path()
}

// employeeChanged compares the fields a sync maintains. Timestamps are ignored.
func employeeChanged(a, b *model.Employee) bool {
	return a.FirstName != b.FirstName ||
		a.MiddleName != b.MiddleName ||
		a.LastName != b.LastName ||
		a.FullName != b.FullName ||
		a.Email != b.Email ||
		a.Department != b.Department ||
		a.JobTitle != b.JobTitle ||
		a.PositionID != b.PositionID ||
		a.Location != b.Location ||
		a.CompanyCode != b.CompanyCode ||
		a.ReportsTo != b.ReportsTo ||
		!equalInt(a.DirectReportsCount, b.DirectReportsCount) ||
		a.IsActive != b.IsActive ||
		!equalTime(a.HireDate, b.HireDate) ||
		!equalTime(a.RehireDate, b.RehireDate) ||
		a.Source != b.Source ||
		a.VotingEligible != b.VotingEligible ||
		a.EligibilityRule != b.EligibilityRule ||
		a.VotingGroup != b.VotingGroup
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
