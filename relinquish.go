package elector

import "time"

// RelinquishMonitor is evaluated on a fixed cadence by a sitting primary. It
// never initiates an election; it only surrenders the role. Grounded on
// state_leader.go's leasing(), generalized from a lease-timer check into
// three explicit step-down predicates: a peer holding a newer primary
// epoch, this node's log falling behind a peer's, and losing sight of a
// majority of the configured votes.
type RelinquishMonitor struct {
	ctx *Context

	// lastLostMajorityWarning rate-limits the "lost majority" log line,
	// replacing consensus.cpp's process-global `static int complain`
	// with a field on the monitor.
	lastLostMajorityWarning time.Time
}

// NewRelinquishMonitor builds a RelinquishMonitor bound to ctx.
func NewRelinquishMonitor(ctx *Context) *RelinquishMonitor {
	return &RelinquishMonitor{ctx: ctx}
}

// Tick evaluates the three step-down predicates once and, if any holds,
// steps this node down: role reverts to Secondary, the believed primary is
// cleared, tie-break memory is reset, and StepDownFor governs when the
// coordinator's FRESH pre-condition next allows this node to run for
// election again.
func (m *RelinquishMonitor) Tick(stepDownFor time.Duration) (steppedDown bool, reason string) {
	if m.ctx.OwnRole() != Primary {
		return false, ""
	}

	view := m.ctx.Peers.Snapshot()
	ownPosition := m.ctx.Oracle.LivePosition()
	ownHKP := m.ctx.Epoch.Get()
	config := view.Config()

	var upVotes uint32
	for _, mem := range config.Members {
		if mem.ID == m.ctx.Self.ID {
			upVotes += mem.Votes
			continue
		}
		hb, known := view.Heartbeat(mem.ID)
		if !known || !hb.Up {
			continue
		}
		upVotes += mem.Votes

		if ownPosition.Less(hb.LastLogPosition) {
			steppedDown, reason = true, "log is behind"
		}
		if !steppedDown && ownHKP < hb.HighestKnownPrimaryInSet {
			steppedDown, reason = true, "newer primary known"
		}
	}

	if !steppedDown {
		total := int64(config.TotalConfiguredVotes())
		if int64(upVotes)*2 <= total {
			steppedDown, reason = true, "lost majority"
			now := m.ctx.Clock.Now()
			if now.Sub(m.lastLostMajorityWarning) >= time.Minute {
				m.lastLostMajorityWarning = now
				if m.ctx.Logger != nil {
					m.ctx.Logger.Warn().
						Uint32("upVotes", upVotes).
						Uint64("totalVotes", uint64(total)).
						Msg("cannot see a majority of the configured votes")
				}
			}
		}
	}

	if steppedDown {
		m.ctx.SetOwnRole(Secondary)
		m.ctx.SetCurrentPrimaryID(nil)
		m.ctx.ResetTieMemory()
		m.ctx.SetSteppedDownUntil(m.ctx.Clock.Now().Add(stepDownFor))
	}

	return steppedDown, reason
}
