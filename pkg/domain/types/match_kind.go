package types

// MatchKind describes how a directory employee was paired with a roster row
type MatchKind string

const (
	MatchKindExact   MatchKind = "exact"
	MatchKindPartial MatchKind = "partial"
	MatchKindNone    MatchKind = "none"
)

func (k MatchKind) String() string {
	return string(k)
}

// Matched returns true for exact and partial matches
func (k MatchKind) Matched() bool {
	return k == MatchKindExact || k == MatchKindPartial
}
