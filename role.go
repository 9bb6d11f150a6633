package elector

// Role is the local node's own current standing in the replica set, as
// consulted by the Vote Evaluator's role checks. Election-worthiness of
// remote candidates is a separate, pure concern (Member.electable /
// HeartbeatInfo): a node's own role and a candidate's electability are
// independent questions and are kept as separate checks for that reason.
type Role uint32

const (
	// Secondary is a node tailing the primary's log.
	Secondary Role = iota

	// Candidate is a node currently running an election attempt.
	Candidate

	// Primary is a node currently accepting client writes.
	Primary
)

// String returns a human readable role name.
func (s Role) String() string {
	switch s {
	case Candidate:
		return "candidate"
	case Primary:
		return "primary"
	}
	return "secondary"
}

// CoordinatorState is the Election Coordinator's own state machine
// position.
type CoordinatorState uint32

const (
	// Idle is waiting for an upper-layer trigger.
	Idle CoordinatorState = iota
	// Fresh is running the freshness phase.
	Fresh
	// Elect is running the election phase.
	Elect
	// Sleep is holding a tie-break jitter interval.
	Sleep
	// PrimaryState is a coordinator that just won an election.
	PrimaryState
)

// String returns a human readable coordinator state name.
func (s CoordinatorState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Elect:
		return "elect"
	case Sleep:
		return "sleep"
	case PrimaryState:
		return "primary"
	}
	return "idle"
}
