package elector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Coordinator drives the freshness and elect phases in sequence, dispatching
// on the tagged FreshOutcome the freshness phase returns. Only one Trigger
// may be in flight at a time on a given node.
type Coordinator struct {
	ctx     *Context
	fresh   *FreshnessPhase
	elect   *ElectionPhase
	state   atomic.Uint32
	running atomic.Bool
}

// NewCoordinator builds a Coordinator bound to ctx.
func NewCoordinator(ctx *Context) *Coordinator {
	return &Coordinator{
		ctx:   ctx,
		fresh: NewFreshnessPhase(ctx),
		elect: NewElectionPhase(ctx),
	}
}

// State returns the coordinator's current position in the state machine.
func (c *Coordinator) State() CoordinatorState {
	return CoordinatorState(c.state.Load())
}

func (c *Coordinator) setState(s CoordinatorState) {
	c.state.Store(uint32(s))
	if c.ctx.Metrics != nil {
		c.ctx.Metrics.setCoordinatorStateGauge(s)
	}
}

// Trigger runs one coordinator attempt to completion: FRESH, possibly one
// SLEEP-and-retry on a tie, then ELECT. It returns nil on a successful
// election, and also nil without running anything when this node is an
// arbiter, has a slave delay, or is still inside its stepped-down window.
// It returns ErrTimeout at once if another Trigger is already in flight,
// parent's error if parent is done during the tie-break sleep, and
// otherwise one of the sentinel errors in errors.go (or a *VetoError, or a
// TieSignal if a second tie was hit within this attempt).
// Errors are never fatal to the process: the coordinator always ends back
// in IDLE unless it reached PRIMARY.
func (c *Coordinator) Trigger(parent context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrTimeout
	}
	defer c.running.Store(false)
	won := false
	defer func() {
		if !won {
			c.setState(Idle)
		}
	}()

	if c.ctx.Self.ArbiterOnly || c.ctx.Self.SlaveDelay != 0 {
		return nil
	}
	if c.ctx.Clock.Now().Before(c.ctx.SteppedDownUntil()) {
		return nil
	}

	c.ctx.SetOwnRole(Candidate)

	attempt := &ElectionAttempt{
		RoundID:               uuid.NewString(),
		CandidateID:           c.ctx.Self.ID,
		ConfigSnapshotVersion: c.ctx.Peers.Snapshot().Config().Version,
		StartTime:             c.ctx.Clock.Now(),
	}

	slept := false
	for {
		c.setState(Fresh)
		outcome := c.fresh.Run(parent, attempt)

		switch outcome.Kind {
		case FreshAbort:
			c.logAbort(attempt, outcome.Err)
			c.ctx.SetOwnRole(Secondary)
			return outcome.Err

		case FreshMustSleep:
			if slept {
				// Ties auto-retry once; a second tie within the same
				// trigger is reported back as Tie, not silently
				// looped forever.
				c.ctx.SetOwnRole(Secondary)
				return TieSignal{}
			}
			slept = true
			c.setState(Sleep)
			select {
			case <-parent.Done():
				c.ctx.SetOwnRole(Secondary)
				return parent.Err()
			case <-time.After(outcome.SleepFor):
			}
			continue

		default: // FreshProceed
			attempt.TieCount = outcome.TieCount
			attempt.ObservedHighestPrimary = outcome.ObservedHKP
			c.setState(Elect)
			result := c.elect.Run(parent, attempt, outcome)
			if result.Success {
				won = true
				c.setState(PrimaryState)
				c.ctx.ResetTieMemory()
				c.logSuccess(attempt, result)
				return nil
			}
			c.logAbort(attempt, result.Err)
			c.ctx.SetOwnRole(Secondary)
			return result.Err
		}
	}
}

func (c *Coordinator) logAbort(attempt *ElectionAttempt, err error) {
	if c.ctx.Metrics != nil {
		c.ctx.Metrics.observeAbort(err, c.ctx.Clock.Now().Sub(attempt.StartTime))
	}
	if c.ctx.AuditLog != nil {
		_ = c.ctx.AuditLog.Record(ElectionRecord{
			RoundID:   attempt.RoundID,
			Candidate: attempt.CandidateID,
			Success:   false,
			Reason:    errString(err),
			Timestamp: c.ctx.Clock.Now(),
		})
	}
	if c.ctx.Logger != nil {
		c.ctx.Logger.Info().
			Str("roundId", attempt.RoundID).
			Uint32("candidateId", uint32(attempt.CandidateID)).
			Err(err).
			Msg("election attempt aborted")
	}
}

func (c *Coordinator) logSuccess(attempt *ElectionAttempt, result ElectResult) {
	if c.ctx.Metrics != nil {
		c.ctx.Metrics.observeElected(c.ctx.Clock.Now().Sub(attempt.StartTime))
	}
	if c.ctx.AuditLog != nil {
		_ = c.ctx.AuditLog.Record(ElectionRecord{
			RoundID:   attempt.RoundID,
			Candidate: attempt.CandidateID,
			Success:   true,
			Epoch:     result.Epoch,
			Timestamp: c.ctx.Clock.Now(),
		})
	}
	if c.ctx.Logger != nil {
		c.ctx.Logger.Info().
			Str("roundId", attempt.RoundID).
			Uint32("candidateId", uint32(attempt.CandidateID)).
			Uint64("epoch", uint64(result.Epoch)).
			Int64("tally", result.Tally).
			Msg("assumed primary")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
