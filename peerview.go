package elector

import (
	"maps"
	"sync"
)

// PeerView is a read-only, point-in-time snapshot of the configured
// membership and the cached heartbeat state known about each member. It
// is a flat, immutable value: callers never see live pointers into the
// registry's arenas, so a PeerView handed to a freshness or elect responder
// cannot be mutated out from under it.
type PeerView struct {
	config     ReplicaSetConfig
	heartbeats map[MemberId]HeartbeatInfo
}

// Config returns the membership snapshot this view was taken against.
func (v PeerView) Config() ReplicaSetConfig { return v.config }

// Heartbeat returns the cached heartbeat info for id, if any is known.
func (v PeerView) Heartbeat(id MemberId) (HeartbeatInfo, bool) {
	hb, ok := v.heartbeats[id]
	return hb, ok
}

// PossiblyUp returns every configured member whose cached heartbeat is
// marked up, or for whom no heartbeat has been recorded yet. This is
// optimistic on purpose: freshness and elect requests multicast to everyone
// "possibly up", arbiters included.
func (v PeerView) PossiblyUp() []Member {
	out := make([]Member, 0, len(v.config.Members))
	for _, m := range v.config.Members {
		if hb, ok := v.heartbeats[m.ID]; !ok || hb.Up {
			out = append(out, m)
		}
	}
	return out
}

// BestKnownPosition returns the best LogPosition v knows about among the
// members whose heartbeats are up, self included via localPosition. It is
// used to compute a responder's "fresher" verdict: a candidate is not
// freshest if it trails the responder's own position or the best position
// the responder has learned about any third member.
func (v PeerView) BestKnownPosition(localPosition LogPosition) LogPosition {
	best := localPosition
	for _, hb := range v.heartbeats {
		if hb.Up && best.Less(hb.LastLogPosition) {
			best = hb.LastLogPosition
		}
	}
	return best
}

// Peers is the external collaborator contract every phase reads membership
// and heartbeat state through: snapshot() -> PeerView.
type Peers interface {
	Snapshot() PeerView
}

// peerRegistry is the concrete, mutable arena a node keeps for its own
// configured members and their cached heartbeats. It is the single writer:
// the heartbeat task and the admin reconfig path write through it; the core
// only ever reads PeerView snapshots produced by Snapshot(). Grounded on
// rafty's mutex-guarded configuration access (utils.go's
// quorum()/getPeers()), generalized to a MemberId-keyed arena.
type peerRegistry struct {
	mu         sync.RWMutex
	config     ReplicaSetConfig
	heartbeats map[MemberId]HeartbeatInfo
}

// NewPeerRegistry constructs a registry seeded with the given configuration.
func NewPeerRegistry(config ReplicaSetConfig) *peerRegistry {
	return &peerRegistry{
		config:     config,
		heartbeats: make(map[MemberId]HeartbeatInfo, len(config.Members)),
	}
}

// Snapshot implements Peers.
func (r *peerRegistry) Snapshot() PeerView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]Member, len(r.config.Members))
	copy(members, r.config.Members)
	return PeerView{
		config: ReplicaSetConfig{
			Name:    r.config.Name,
			Version: r.config.Version,
			Members: members,
		},
		heartbeats: maps.Clone(r.heartbeats),
	}
}

// SetConfig replaces the configuration, e.g. on admin reconfiguration. It
// does not clear heartbeats for members that survive the reconfiguration.
func (r *peerRegistry) SetConfig(config ReplicaSetConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
}

// UpdateHeartbeat records the latest cached liveness info for id, as
// delivered by the (external) heartbeat subsystem.
func (r *peerRegistry) UpdateHeartbeat(id MemberId, info HeartbeatInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heartbeats[id] = info
}
