package types

// SyncPhase is the stage a reconciliation run has reached.
// Phases advance fetching → matching → evaluating → diffing → persisting → done;
// failed is reachable from any phase.
type SyncPhase string

const (
	SyncPhaseFetching   SyncPhase = "fetching"
	SyncPhaseMatching   SyncPhase = "matching"
	SyncPhaseEvaluating SyncPhase = "evaluating"
	SyncPhaseDiffing    SyncPhase = "diffing"
	SyncPhasePersisting SyncPhase = "persisting"
	SyncPhaseDone       SyncPhase = "done"
	SyncPhaseFailed     SyncPhase = "failed"
)

// IsTerminal returns true when no further phase follows
func (p SyncPhase) IsTerminal() bool {
	return p == SyncPhaseDone || p == SyncPhaseFailed
}

func (p SyncPhase) String() string {
	return string(p)
}
