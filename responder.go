package elector

// Responder answers incoming Freshness/Elect RPCs on behalf of the local
// node, consulting the Vote Evaluator and Epoch Store to decide whether this
// node is willing to support a remote candidacy.
type Responder struct {
	ctx *Context
}

// NewResponder builds a Responder bound to ctx.
func NewResponder(ctx *Context) *Responder {
	return &Responder{ctx: ctx}
}

// evalContext builds the EvalContext the Vote Evaluator needs, sampling the
// responder's current peer view and role atomically so both reflect the
// same instant.
func (r *Responder) evalContext() (PeerView, EvalContext) {
	view := r.ctx.Peers.Snapshot()
	own := r.ctx.OwnRole()
	primaryID := r.ctx.CurrentPrimaryID()
	return view, EvalContext{
		View:             view,
		Self:             r.ctx.Self,
		OwnRole:          own,
		OwnLivePosition:  r.ctx.Oracle.LivePosition(),
		CurrentPrimaryID: primaryID,
		FreshnessWindow:  r.ctx.Options.FreshnessWindow,
		Now:              r.ctx.Clock.Now(),
	}
}

// RespondFreshness implements the Freshness RPC responder algorithm: a
// reply sets fresher=true iff the candidate's claimed position trails
// either the responder's own live position or the best position the
// responder has learned about any third member; veto is whatever the Vote
// Evaluator says.
func (r *Responder) RespondFreshness(req FreshQuery) FreshReply {
	view, evalCtx := r.evalContext()

	ownPosition := evalCtx.OwnLivePosition
	best := view.BestKnownPosition(ownPosition)

	reply := FreshReply{
		RemoteLivePosition: ownPosition,
		RemoteHKP:          r.ctx.Epoch.Get(),
	}

	if req.LivePosition.Less(ownPosition) || req.LivePosition.Less(best) {
		reply.Fresher = true
	}

	decision := Evaluate(req.CandidateID, req.ConfigVersion, evalCtx)
	if decision.Kind == DecisionVeto || decision.Kind == DecisionAbstain {
		reply.Veto = true
		reply.VetoReason = decision.Reason
	}

	return reply
}

// RespondElect implements the Elect RPC responder algorithm: stale set
// names and outdated config versions are silently ignored, a veto returns
// VetoVoteWeight, and a granted legacy or epoch-aware request returns this node's
// configured vote weight.
func (r *Responder) RespondElect(req ElectRequest) ElectReply {
	reply := ElectReply{RoundID: req.RoundID}

	_, evalCtx := r.evalContext()
	ownVersion := evalCtx.View.Config().Version

	if req.Set != r.ctx.Options.SetName || ownVersion < req.ConfigVersion {
		reply.Vote = 0
		return reply
	}

	decision := Evaluate(req.WhoID, req.ConfigVersion, evalCtx)
	if decision.Kind == DecisionVeto {
		reply.Vote = VetoVoteWeight
		return reply
	}

	if req.ProposedEpoch == nil {
		// Legacy compatibility: peer omitted proposed_epoch. Grant iff
		// the evaluator would grant, without touching the Epoch Store.
		if decision.Kind == DecisionGrant {
			reply.Vote = int32(decision.Weight)
		}
		return reply
	}

	if r.ctx.Epoch.Propose(*req.ProposedEpoch, req.WhoID) {
		reply.Vote = int32(r.ctx.Self.Votes)
		return reply
	}
	reply.Vote = 0
	return reply
}
