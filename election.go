package elector

import (
	"context"
	"sync"
)

// ElectResult is the outcome of one Election Phase run.
type ElectResult struct {
	Success bool
	Epoch   PrimaryEpoch
	Tally   int64
	Err     error
}

// ElectionPhase collects yes/no ballots from every possibly-up peer and
// tallies them against the configured majority.
type ElectionPhase struct {
	ctx *Context
}

// NewElectionPhase builds an ElectionPhase bound to ctx.
func NewElectionPhase(ctx *Context) *ElectionPhase {
	return &ElectionPhase{ctx: ctx}
}

// Run executes one elect attempt, given the Proceed tuple a FreshnessPhase
// just returned.
func (p *ElectionPhase) Run(parent context.Context, attempt *ElectionAttempt, fresh FreshOutcome) ElectResult {
	start := p.ctx.Clock.Now()
	view := p.ctx.Peers.Snapshot()
	config := view.Config()

	proposedEpoch := fresh.ObservedHKP + 1
	targets := targetsExcludingSelf(view.PossiblyUp(), p.ctx.Self.ID)

	req := ElectRequest{
		Set:                   p.ctx.Options.SetName,
		Who:                   p.ctx.Self.Host,
		WhoID:                 p.ctx.Self.ID,
		ConfigVersion:         attempt.ConfigSnapshotVersion,
		RoundID:               attempt.RoundID,
		ProposedEpoch:         &proposedEpoch,
		CandidateLivePosition: p.ctx.Oracle.LivePosition(),
	}

	// Self-vote short-circuit: the candidate's own ballot never round
	// trips through the RPC layer.
	tally := int64(p.ctx.Self.Votes)

	results := p.fanOut(parent, targets, req)
	for _, res := range results {
		if res.err != nil {
			continue
		}
		tally += int64(res.elect.Vote)
	}

	attempt.Tally = tally

	if p.ctx.Clock.Now().Sub(start) > p.ctx.Options.ElectionCeiling {
		return ElectResult{Err: ErrTimeout, Tally: tally}
	}

	if p.ctx.Peers.Snapshot().Config().Version != config.Version {
		return ElectResult{Err: ErrConfigChanged, Tally: tally}
	}

	total := int64(config.TotalConfiguredVotes())
	if tally*2 <= total {
		return ElectResult{Err: ErrInsufficientVotes, Tally: tally}
	}

	if !p.ctx.Epoch.Propose(proposedEpoch, p.ctx.Self.ID) {
		return ElectResult{Err: ErrEpochRejected, Tally: tally}
	}

	if p.ctx.AssumePrimary == nil || !p.ctx.AssumePrimary(proposedEpoch) {
		return ElectResult{Err: ErrAssumePrimaryFailed, Tally: tally}
	}

	p.ctx.SetOwnRole(Primary)
	self := p.ctx.Self.ID
	p.ctx.SetCurrentPrimaryID(&self)

	return ElectResult{Success: true, Epoch: proposedEpoch, Tally: tally}
}

// fanOut mirrors FreshnessPhase.fanOut for elect requests.
func (p *ElectionPhase) fanOut(parent context.Context, targets []Member, req ElectRequest) []rpcCall {
	results := make([]rpcCall, len(targets))
	var wg sync.WaitGroup
	wg.Add(len(targets))
	for i, peer := range targets {
		go func(i int, peer Member) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(parent, p.ctx.Options.PerCallTimeout)
			defer cancel()
			reply, err := p.ctx.Transport.SendElectRequest(callCtx, peer, req)
			results[i] = rpcCall{peer: peer, elect: reply, err: err}
		}(i, peer)
	}
	wg.Wait()
	return results
}
