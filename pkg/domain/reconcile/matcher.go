package reconcile

import (
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/domain/types"
)

// minPartialTokens is the token count both names need for a subset match,
// so a single shared token never pairs two people.
const minPartialTokens = 2

// MatchResult is the roster row paired with a directory employee.
// Record is nil when Kind is MatchKindNone.
type MatchResult struct {
	Record *model.RosterRecord
	Kind   types.MatchKind
}

// Matcher is a name-keyed index over roster rows. Buckets keep insertion
// order, which makes the tie-break between same-name rows deterministic for
// a given input order.
type Matcher struct {
	records []*model.RosterRecord
	tokens  [][]string
	index   map[string][]*model.RosterRecord
}

// NewMatcher indexes every record under each of its candidate keys
func NewMatcher(records []*model.RosterRecord) *Matcher {
	m := &Matcher{
		records: make([]*model.RosterRecord, 0, len(records)),
		tokens:  make([][]string, 0, len(records)),
		index:   make(map[string][]*model.RosterRecord),
	}
	for _, r := range records {
		m.add(r)
	}
	return m
}

func (m *Matcher) add(r *model.RosterRecord) {
	name := r.Name()
	m.records = append(m.records, r)
	m.tokens = append(m.tokens, Tokens(name))

	for _, key := range CandidateKeys(name) {
		bucket := m.index[key]
		if containsRecord(bucket, r) {
			continue
		}
		m.index[key] = append(bucket, r)
	}
}

// Len returns the number of indexed records
func (m *Matcher) Len() int {
	return len(m.records)
}

// Resolve finds the roster row for the employee: exact key lookup first,
// then subset-token partial matching.
func (m *Matcher) Resolve(e *model.Employee) MatchResult {
	names := employeeNames(e)

	for _, name := range names {
		for _, key := range CandidateKeys(name) {
			bucket := m.index[key]
			switch len(bucket) {
			case 0:
				continue
			case 1:
				return MatchResult{Record: bucket[0], Kind: types.MatchKindExact}
			default:
				return MatchResult{Record: pickByDepartment(bucket, e.Department), Kind: types.MatchKindExact}
			}
		}
	}

	for _, name := range names {
		if r := m.partial(Tokens(name)); r != nil {
			return MatchResult{Record: r, Kind: types.MatchKindPartial}
		}
	}

	return MatchResult{Kind: types.MatchKindNone}
}

func (m *Matcher) partial(tokens []string) *model.RosterRecord {
	if len(tokens) < minPartialTokens {
		return nil
	}
	for i, candidate := range m.tokens {
		if len(candidate) < minPartialTokens {
			continue
		}
		if isSubset(tokens, candidate) || isSubset(candidate, tokens) {
			return m.records[i]
		}
	}
	return nil
}

// pickByDepartment prefers the row whose department equals the employee's,
// otherwise the first row in insertion order
func pickByDepartment(bucket []*model.RosterRecord, department string) *model.RosterRecord {
	if dept := Normalize(department); dept != "" {
		for _, r := range bucket {
			if Normalize(r.Department) == dept {
				return r
			}
		}
	}
	return bucket[0]
}

// employeeNames lists the names tried for an employee: the display name,
// then first and last name when they differ from it
func employeeNames(e *model.Employee) []string {
	names := []string{e.DisplayName()}
	if e.FirstName != "" && e.LastName != "" {
		short := e.FirstName + " " + e.LastName
		if BuildKey(short) != BuildKey(names[0]) {
			names = append(names, short)
		}
	}
	return names
}

func isSubset(small, large []string) bool {
	if len(small) > len(large) {
		return false
	}
	set := make(map[string]int, len(large))
	for _, t := range large {
		set[t]++
	}
	for _, t := range small {
		if set[t] == 0 {
			return false
		}
		set[t]--
	}
	return true
}

func containsRecord(bucket []*model.RosterRecord, r *model.RosterRecord) bool {
	for _, b := range bucket {
		if b == r {
			return true
		}
	}
	return false
}
