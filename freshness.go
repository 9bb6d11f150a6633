package elector

import (
	"context"
	"sync"
	"time"
)

// FreshOutcomeKind tags a FreshnessPhase result with an explicit, inspectable
// outcome rather than an exception-style control-flow signal.
type FreshOutcomeKind uint8

const (
	// FreshProceed means the phase found no reason to abort and no
	// unresolved tie: the coordinator may enter ELECT.
	FreshProceed FreshOutcomeKind = iota
	// FreshAbort means the phase failed outright; Err explains why.
	FreshAbort
	// FreshMustSleep means a tie was found and this node is not the one
	// that proceeds immediately; the coordinator must hold SleepFor and
	// rerun the phase from scratch.
	FreshMustSleep
)

// FreshOutcome is the Freshness Phase's tagged result.
type FreshOutcome struct {
	Kind        FreshOutcomeKind
	Err         error
	TieCount    int
	AllUp       bool
	ObservedHKP PrimaryEpoch
	SleepFor    time.Duration
}

// FreshnessPhase polls every possibly-up peer for objections to this node's
// candidacy before an election attempt spends any votes.
type FreshnessPhase struct {
	ctx *Context
}

// NewFreshnessPhase builds a FreshnessPhase bound to ctx.
func NewFreshnessPhase(ctx *Context) *FreshnessPhase {
	return &FreshnessPhase{ctx: ctx}
}

// Run executes one freshness attempt for the given election attempt.
func (p *FreshnessPhase) Run(parent context.Context, attempt *ElectionAttempt) FreshOutcome {
	view := p.ctx.Peers.Snapshot()
	ownPosition := p.ctx.Oracle.LivePosition()
	localHKP := p.ctx.Epoch.Get()

	targets := targetsExcludingSelf(view.PossiblyUp(), p.ctx.Self.ID)
	query := FreshQuery{
		Set:           p.ctx.Options.SetName,
		Who:           p.ctx.Self.Host,
		CandidateID:   p.ctx.Self.ID,
		ConfigVersion: attempt.ConfigSnapshotVersion,
		LivePosition:  ownPosition,
	}

	results := p.fanOut(parent, targets, query)

	observedHKP := localHKP
	tiedPeers := make([]MemberId, 0, len(results))
	replied := make(map[MemberId]bool, len(results))

	for _, res := range results {
		if res.err != nil {
			continue
		}
		replied[res.peer.ID] = true

		if res.fresh.Fresher {
			return FreshOutcome{Kind: FreshAbort, Err: ErrNotFreshest}
		}
		if res.fresh.Veto {
			return FreshOutcome{Kind: FreshAbort, Err: Vetoed(res.fresh.VetoReason)}
		}
		if res.fresh.RemoteHKP > observedHKP {
			observedHKP = res.fresh.RemoteHKP
		}
		if res.fresh.RemoteLivePosition.Equal(ownPosition) {
			tiedPeers = append(tiedPeers, res.peer.ID)
		}
	}

	allUp := true
	for _, m := range view.Config().Members {
		if m.ID == p.ctx.Self.ID || m.Votes == 0 {
			continue
		}
		if !replied[m.ID] {
			allUp = false
			break
		}
	}
	if allUp {
		p.ctx.NoteAllUp()
	} else if !p.ctx.PastStartupGrace(view) {
		// Mirrors _electSelf: a freshly started node that can't yet see
		// every configured member holds off on electing itself for a
		// grace window, rather than risk splitting a cluster that is
		// still coming up together.
		return FreshOutcome{Kind: FreshAbort, Err: ErrStartupGrace, AllUp: allUp, ObservedHKP: observedHKP}
	}

	if len(tiedPeers) > 0 {
		lowest := true
		for _, id := range tiedPeers {
			if id < p.ctx.Self.ID {
				lowest = false
				break
			}
		}
		if !lowest && !p.ctx.ConsumeSleptLastElection() {
			sleepFor := p.ctx.Rand.UniformDuration(p.ctx.Options.TieSleepMin, p.ctx.Options.TieSleepMax)
			p.ctx.MarkSleptThisElection()
			return FreshOutcome{Kind: FreshMustSleep, SleepFor: sleepFor, TieCount: len(tiedPeers)}
		}
	}

	return FreshOutcome{
		Kind:        FreshProceed,
		TieCount:    len(tiedPeers),
		AllUp:       allUp,
		ObservedHKP: observedHKP,
	}
}

// fanOut dispatches query to every target in parallel and joins their
// replies at a single point, matching state_candidate.go's
// preVoteRequest/handlePreVoteResponse fan-out shape generalized away from
// a raw grpc client to the Transport interface.
func (p *FreshnessPhase) fanOut(parent context.Context, targets []Member, query FreshQuery) []rpcCall {
	results := make([]rpcCall, len(targets))
	var wg sync.WaitGroup
	wg.Add(len(targets))
	for i, peer := range targets {
		go func(i int, peer Member) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(parent, p.ctx.Options.PerCallTimeout)
			defer cancel()
			reply, err := p.ctx.Transport.SendFreshQuery(callCtx, peer, query)
			results[i] = rpcCall{peer: peer, fresh: reply, err: err}
		}(i, peer)
	}
	wg.Wait()
	return results
}

func targetsExcludingSelf(members []Member, self MemberId) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.ID != self {
			out = append(out, m)
		}
	}
	return out
}
