package elector

import (
	"context"
	"time"
)

// FreshQuery is the Freshness RPC request.
type FreshQuery struct {
	Set           string
	Who           string
	CandidateID   MemberId
	ConfigVersion uint64
	LivePosition  LogPosition
}

// FreshReply is the Freshness RPC reply.
type FreshReply struct {
	RemoteLivePosition LogPosition
	Fresher            bool
	Veto               bool
	VetoReason         string
	RemoteHKP          PrimaryEpoch
}

// ElectRequest is the Elect RPC request. ProposedEpoch is a pointer so a
// peer running an older revision of the protocol can omit it entirely; the
// elect responder treats a nil ProposedEpoch as a legacy-compatibility
// grant that never touches the Epoch Store.
type ElectRequest struct {
	Set                   string
	Who                   string
	WhoID                 MemberId
	ConfigVersion         uint64
	RoundID               string
	ProposedEpoch         *PrimaryEpoch
	CandidateLivePosition LogPosition
}

// ElectReply is the Elect RPC reply. Vote of -10000 denotes veto, 0 denotes
// no-op, and self.votes denotes grant.
type ElectReply struct {
	Vote    int32
	RoundID string
}

// VetoVoteWeight is the large negative vote weight a single veto
// contributes to a tally, guaranteeing it dominates any realistic
// configured majority.
const VetoVoteWeight int32 = -10000

// Transport is the peer-RPC contract the Freshness and Elect phases fan out
// over. Its concrete implementation (package transport) carries these calls
// over gRPC; the phases themselves only depend on this interface, keeping
// the RPC transport an external collaborator of the core.
type Transport interface {
	SendFreshQuery(ctx context.Context, peer Member, req FreshQuery) (FreshReply, error)
	SendElectRequest(ctx context.Context, peer Member, req ElectRequest) (ElectReply, error)
}

// rpcCall pairs one peer with the two possible replies its goroutine can
// produce, mirroring rafty's RPCResponse{TargetPeer, Response, Error}
// channel-join idiom (rpcs_types.go) generalized to whichever phase is
// currently fanning out.
type rpcCall struct {
	peer  Member
	fresh FreshReply
	elect ElectReply
	err   error
}

// defaultPerCallTimeout is the default bound on a single peer RPC
// (Options.PerCallTimeout), independent of the phase-wide
// ceiling. An expired call counts as a non-reply, the same as any other RPC
// error.
const defaultPerCallTimeout = 300 * time.Millisecond
