package elector

import "time"

// MemberId identifies a replica set member. It is small, unique within one
// ReplicaSetConfig, and stable across restarts.
type MemberId uint32

// Member is a configured peer descriptor. Configuration is immutable within
// the lifetime of one election attempt; a new ReplicaSetConfig.Version
// carries a fresh set of Members.
type Member struct {
	ID          MemberId
	Host        string
	Priority    float64
	Votes       uint32
	ArbiterOnly bool
	SlaveDelay  time.Duration
	Hidden      bool
}

// electable reports whether m can ever hold the primary role, independently
// of its current heartbeat state.
func (m Member) electable() bool {
	return !m.ArbiterOnly && m.SlaveDelay == 0 && !m.Hidden && m.Votes > 0
}

// ReplicaSetConfig is the admin-controlled membership snapshot consulted by
// one election attempt. Version increases on every reconfiguration; peers
// running an older Version must defer to whoever holds the newer one.
type ReplicaSetConfig struct {
	Name    string
	Version uint64
	Members []Member
}

// MemberByID returns the configured Member with the given id, if any.
func (c ReplicaSetConfig) MemberByID(id MemberId) (Member, bool) {
	for _, m := range c.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// TotalConfiguredVotes sums Votes across every configured member, regardless
// of reachability. This is the majority denominator used everywhere a
// quorum is checked, including the Relinquish Monitor's "lost majority"
// check.
func (c ReplicaSetConfig) TotalConfiguredVotes() uint32 {
	var total uint32
	for _, m := range c.Members {
		total += m.Votes
	}
	return total
}

// HeartbeatInfo is maintained by the (out-of-core) heartbeat subsystem and
// consulted read-only here.
type HeartbeatInfo struct {
	Up                       bool
	LastLogPosition          LogPosition
	HighestKnownPrimaryInSet PrimaryEpoch
	LastContactTime          time.Time
}

// PrimaryEpoch is a monotonically non-decreasing counter stamping each
// elected primary. It is also referred to as the "highest known primary"
// (HKP) in the glossary.
type PrimaryEpoch uint64

// ElectionAttempt is the ephemeral, per-invocation state of one coordinator
// run. It is never persisted and is discarded once the coordinator returns
// to Idle.
type ElectionAttempt struct {
	RoundID                string
	CandidateID            MemberId
	ConfigSnapshotVersion  uint64
	StartTime              time.Time
	Tally                  int64
	TieCount               int
	ObservedHighestPrimary PrimaryEpoch
}
