package model

import (
	"sort"
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type (
	PeriodID     string
	NominationID string
	WinnerID     string
)

// MaxNominationReasonLength limits the free text attached to a nomination
const MaxNominationReasonLength = 1000

// VotingPeriod is a time-boxed window in which nominations are collected
type VotingPeriod struct {
	ID        PeriodID
	Name      string
	StartsAt  time.Time
	EndsAt    time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusAt derives the status at the given time. A closed period stays closed.
func (p *VotingPeriod) StatusAt(now time.Time) types.PeriodStatus {
	switch {
	case p.ClosedAt != nil:
		return types.PeriodStatusClosed
	case now.Before(p.StartsAt):
		return types.PeriodStatusUpcoming
	default:
		return types.PeriodStatusOpen
	}
}

// AcceptsNominations returns true while the period is open and not past its end
func (p *VotingPeriod) AcceptsNominations(now time.Time) bool {
	return p.StatusAt(now) == types.PeriodStatusOpen && now.Before(p.EndsAt)
}

// Expired returns true when the end has passed but the period is not closed yet
func (p *VotingPeriod) Expired(now time.Time) bool {
	return p.ClosedAt == nil && !now.Before(p.EndsAt)
}

// Validate checks required fields and the time window
func (p *VotingPeriod) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return goerr.Wrap(ErrInvalidPeriod, "period name is required")
	}
	if !p.EndsAt.After(p.StartsAt) {
		return goerr.Wrap(ErrInvalidPeriod, "period must end after it starts",
			goerr.V("starts_at", p.StartsAt), goerr.V("ends_at", p.EndsAt))
	}
	return nil
}

// Clone returns a deep copy of the period
func (p *VotingPeriod) Clone() *VotingPeriod {
	if p == nil {
		return nil
	}
	c := *p
	c.ClosedAt = cloneTime(p.ClosedAt)
	return &c
}

// Nomination is one employee nominating another within a period
type Nomination struct {
	ID          NominationID
	PeriodID    PeriodID
	NomineeID   EmployeeID
	NominatorID EmployeeID
	Reason      string
	VotingGroup string // nominee's group at nomination time
	CreatedAt   time.Time
}

// DedupeKey identifies the (period, nominator, nominee) triple that may
// appear at most once
func (n *Nomination) DedupeKey() string {
	return string(n.PeriodID) + "_" + string(n.NominatorID) + "_" + string(n.NomineeID)
}

// Winner is the top nominee of a voting group for a closed period
type Winner struct {
	ID          WinnerID
	PeriodID    PeriodID
	VotingGroup string
	EmployeeID  EmployeeID
	Score       int
	RecordedAt  time.Time
}

// TallyEntry is the score of one nominee
type TallyEntry struct {
	NomineeID        EmployeeID `json:"nomineeId"`
	Score            int        `json:"score"`
	FirstNominatedAt time.Time  `json:"firstNominatedAt"`
}

// GroupTally ranks the nominees of one voting group
type GroupTally struct {
	VotingGroup string       `json:"votingGroup"`
	Entries     []TallyEntry `json:"entries"`
}

// Tally counts nominations per nominee within each voting group. Groups are
// ordered by name; entries by score desc, earliest first nomination, then ID.
func Tally(nominations []*Nomination) []GroupTally {
	byGroup := make(map[string]map[EmployeeID]*TallyEntry)
	for _, n := range nominations {
		entries, ok := byGroup[n.VotingGroup]
		if !ok {
			entries = make(map[EmployeeID]*TallyEntry)
			byGroup[n.VotingGroup] = entries
		}
		entry, ok := entries[n.NomineeID]
		if !ok {
			entry = &TallyEntry{NomineeID: n.NomineeID, FirstNominatedAt: n.CreatedAt}
			entries[n.NomineeID] = entry
		}
		entry.Score++
		if n.CreatedAt.Before(entry.FirstNominatedAt) {
			entry.FirstNominatedAt = n.CreatedAt
		}
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	result := make([]GroupTally, 0, len(groups))
	for _, g := range groups {
		entries := make([]TallyEntry, 0, len(byGroup[g]))
		for _, e := range byGroup[g] {
			entries = append(entries, *e)
		}
		sort.Slice(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if !a.FirstNominatedAt.Equal(b.FirstNominatedAt) {
				return a.FirstNominatedAt.Before(b.FirstNominatedAt)
			}
			return a.NomineeID < b.NomineeID
		})
		result = append(result, GroupTally{VotingGroup: g, Entries: entries})
	}
	return result
}
