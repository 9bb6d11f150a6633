package elector

// LogPosition is an opaque, totally-ordered marker of how much of the
// replicated log a node holds. Term increases whenever the log's owning
// primary changes; Index increases monotonically within a term. This
// mirrors the (term, index) ordering used by the surrounding oplog, without
// this package needing to know anything else about oplog entries.
type LogPosition struct {
	Term  uint64
	Index uint64
}

// Compare returns -1, 0 or 1 as p is less than, equal to, or greater than
// other. It is a strict total order: two positions compare equal iff both
// fields match.
func (p LogPosition) Compare(other LogPosition) int {
	switch {
	case p.Term != other.Term:
		if p.Term < other.Term {
			return -1
		}
		return 1
	case p.Index != other.Index:
		if p.Index < other.Index {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Less reports whether p sorts strictly before other.
func (p LogPosition) Less(other LogPosition) bool { return p.Compare(other) < 0 }

// Equal reports whether p and other denote the same position.
func (p LogPosition) Equal(other LogPosition) bool { return p.Compare(other) == 0 }

// LogOracle exposes the local log's live position. Repeated calls within one
// election attempt must return non-decreasing values; nothing else is
// guaranteed. The oplog storage engine that actually owns log entries is an
// external collaborator — this interface is the entirety of the core's
// contact with it.
type LogOracle interface {
	LivePosition() LogPosition
}

// monotonicOracle is a LogOracle backed by a caller-supplied getter. It is
// the concrete oracle a production node registers, delegating to whatever
// storage engine currently owns the oplog; kept trivial since LivePosition
// is its only contract.
type monotonicOracle struct {
	get func() LogPosition
}

// NewLogOracle wraps get as a LogOracle.
func NewLogOracle(get func() LogPosition) LogOracle {
	return &monotonicOracle{get: get}
}

func (o *monotonicOracle) LivePosition() LogPosition {
	return o.get()
}
