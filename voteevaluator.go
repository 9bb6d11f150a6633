package elector

import (
	"fmt"
	"time"
)

// DecisionKind tags the outcome of the Vote Evaluator.
type DecisionKind uint8

const (
	// DecisionGrant means the responder is willing to vote for the
	// candidate, carrying the responder's own vote weight.
	DecisionGrant DecisionKind = iota
	// DecisionVeto is an authoritative "no", sufficient on its own to
	// cancel an election.
	DecisionVeto
	// DecisionAbstain is a "no" that is not strong enough to be a veto
	// by itself, but the freshness responder still reports it to the
	// candidate as veto=true along with the abstain reason.
	DecisionAbstain
)

// Decision is the Vote Evaluator's pure-function result.
type Decision struct {
	Kind   DecisionKind
	Reason string
	Weight uint32
}

// Grant builds a granting Decision carrying the responder's vote weight.
func Grant(weight uint32) Decision { return Decision{Kind: DecisionGrant, Weight: weight} }

// Veto builds a vetoing Decision with reason.
func Veto(reason string) Decision { return Decision{Kind: DecisionVeto, Reason: reason} }

// Abstain builds an abstaining Decision with reason.
func Abstain(reason string) Decision { return Decision{Kind: DecisionAbstain, Reason: reason} }

// EvalContext supplies everything the Vote Evaluator needs beyond the
// candidate's own claims: the responder's peer view, its own role and
// identity, its live position, and the window within which a heartbeat is
// still considered fresh. CurrentPrimaryID, when non-nil, is whichever
// member the responder currently believes holds the primary role, as read
// from Context.CurrentPrimaryID. Within this package that belief is set only
// when the node itself wins an election and cleared when it steps down; a
// remote candidate winning EpochStore.Propose on this node does not set it,
// and any other source must call Context.SetCurrentPrimaryID. HeartbeatInfo
// carries no explicit "reported role" field, so this is how the "other
// primary known" veto rule is grounded without inventing a new wire field.
type EvalContext struct {
	View             PeerView
	Self             Member
	OwnRole          Role
	OwnLivePosition  LogPosition
	CurrentPrimaryID *MemberId
	FreshnessWindow  time.Duration
	Now              time.Time
}

// Evaluate is the Vote Evaluator: a stateless predicate deciding whether the
// responder is willing to vote for candidateID, whose claimed config
// version is candidateConfigVersion. It never mutates ctx and never touches
// the EpochStore, kept as a pure function so it is trivial to unit test in
// isolation from I/O.
func Evaluate(candidateID MemberId, candidateConfigVersion uint64, ctx EvalContext) Decision {
	config := ctx.View.Config()

	candidate, ok := config.MemberByID(candidateID)
	if !ok {
		return Veto("unknown candidate")
	}

	if candidateConfigVersion < config.Version {
		return Veto("stale config")
	}

	if ctx.OwnRole == Primary {
		return Veto("already primary")
	}

	if ctx.CurrentPrimaryID != nil && *ctx.CurrentPrimaryID != candidateID {
		return Veto("other primary known")
	}

	for _, m := range config.Members {
		if m.ID == candidateID || !m.electable() {
			continue
		}
		hb, up := ctx.View.Heartbeat(m.ID)
		if !up || !hb.Up {
			continue
		}
		if m.Priority > candidate.Priority {
			return Veto(fmt.Sprintf("lower priority than %d", m.ID))
		}
	}

	if !candidate.electable() {
		return Veto("not electable")
	}
	hb, known := ctx.View.Heartbeat(candidateID)
	if !known || !hb.Up || (ctx.FreshnessWindow > 0 && ctx.Now.Sub(hb.LastContactTime) > ctx.FreshnessWindow) {
		return Veto("not electable")
	}

	return Grant(ctx.Self.Votes)
}
