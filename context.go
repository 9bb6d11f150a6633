package elector

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options holds the tunables an operator may need to adjust per deployment:
// sane zero-value-driven defaults, applied by NewOptions rather than
// scattered across the codebase.
type Options struct {
	// SetName is the replica set name every RPC is validated against.
	SetName string

	// FreshnessWindow bounds how stale a heartbeat may be before the
	// Vote Evaluator treats the member as not electable.
	FreshnessWindow time.Duration

	// PerCallTimeout bounds a single peer RPC.
	PerCallTimeout time.Duration

	// ElectionCeiling is the wall-clock ceiling for the whole elect
	// phase: default 30s.
	ElectionCeiling time.Duration

	// TieSleepMin/TieSleepMax bound the uniform jitter a tying,
	// non-lowest-id member sleeps before retrying.
	TieSleepMin time.Duration
	TieSleepMax time.Duration

	// RelinquishInterval is the cadence the Relinquish Monitor is
	// evaluated on by a sitting primary.
	RelinquishInterval time.Duration

	// StartupGracePeriod bounds how long a freshly started node waits for
	// every configured member to answer at least one freshness query
	// before it will run an election despite some members still being
	// unreachable.
	StartupGracePeriod time.Duration

	// MetricsNamespacePrefix mirrors rafty_types.go's Options field of the
	// same name. Nothing in this package reads it: NewMetrics takes its
	// namespace as an argument, and NewOptions leaves this field empty.
	MetricsNamespacePrefix string
}

// NewOptions returns Options populated with production-sane defaults.
func NewOptions(setName string) Options {
	return Options{
		SetName:            setName,
		FreshnessWindow:    10 * time.Second,
		PerCallTimeout:     defaultPerCallTimeout,
		ElectionCeiling:    30 * time.Second,
		TieSleepMin:        50 * time.Millisecond,
		TieSleepMax:        1050 * time.Millisecond,
		RelinquishInterval: 2 * time.Second,
		StartupGracePeriod: 5 * time.Minute,
	}
}

// Context bundles every external collaborator the core touches: the
// coordinator, the responder and the relinquish monitor all receive the
// same *Context at construction and never read a package-level global.
type Context struct {
	Self      Member
	Peers     Peers
	Oracle    LogOracle
	Epoch     *EpochStore
	Transport Transport
	Clock     Clock
	Rand      Rand
	Logger    *zerolog.Logger
	Metrics   *Metrics
	AuditLog  *ElectionLog
	Options   Options

	// AssumePrimary is the opaque external step invoked on a successful
	// tally: assume_primary(epoch) -> bool. It gives the caller a chance
	// to decline the role even after winning the vote, e.g. because a
	// concurrent local event already made becoming primary unsafe.
	AssumePrimary func(epoch PrimaryEpoch) bool

	mu                sync.RWMutex
	role              Role
	currentPrimaryID  *MemberId
	steppedDownUntil  time.Time
	sleptLastElection bool
	startedAt         time.Time
	sawAllUpOnce      bool
}

// NewContext constructs a Context. Callers fill in AssumePrimary and may
// override defaulted collaborators (Clock, Rand) afterwards.
func NewContext(self Member, peers Peers, oracle LogOracle, epoch *EpochStore, transport Transport, logger *zerolog.Logger, opts Options) *Context {
	return &Context{
		Self:      self,
		Peers:     peers,
		Oracle:    oracle,
		Epoch:     epoch,
		Transport: transport,
		Clock:     NewSystemClock(),
		Rand:      NewRand(int64(self.ID) + time.Now().UnixNano()),
		Logger:    logger,
		Options:   opts,
		role:      Secondary,
		startedAt: time.Now(),
	}
}

// OwnRole returns the local node's current role.
func (c *Context) OwnRole() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// SetOwnRole updates the local node's current role.
func (c *Context) SetOwnRole(r Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = r
}

// CurrentPrimaryID returns whichever member the local node currently
// believes holds the primary role, or nil if none is known.
func (c *Context) CurrentPrimaryID() *MemberId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentPrimaryID
}

// SetCurrentPrimaryID records id as the believed primary. Passing nil clears
// the belief (e.g. after a step-down).
func (c *Context) SetCurrentPrimaryID(id *MemberId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPrimaryID = id
}

// SteppedDownUntil returns the timestamp before which the coordinator
// refuses to run an election, set when this node voluntarily relinquished
// the primary role.
func (c *Context) SteppedDownUntil() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.steppedDownUntil
}

// SetSteppedDownUntil records when this node may next enter FRESH.
func (c *Context) SetSteppedDownUntil(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steppedDownUntil = until
}

// ConsumeSleptLastElection reports whether this node slept during its most
// recent tie-break and clears the flag: a member that already slept in the
// most recent election skips sleeping on its next attempt within the same
// election.
func (c *Context) ConsumeSleptLastElection() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	slept := c.sleptLastElection
	c.sleptLastElection = false
	return slept
}

// MarkSleptThisElection records that this node just took the tie-break
// sleep, so the next attempt in this election skips it.
func (c *Context) MarkSleptThisElection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleptLastElection = true
}

// ResetTieMemory clears the sleep memory, e.g. once a coordinator run
// reaches PRIMARY or IDLE after a successful/aborted attempt unrelated to a
// tie.
func (c *Context) ResetTieMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleptLastElection = false
}

// NoteAllUp records that every configured, vote-carrying member has
// replied OK to a freshness query at least once, satisfying the startup
// grace period early.
func (c *Context) NoteAllUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sawAllUpOnce = true
}

// PastStartupGrace reports whether the coordinator may proceed with
// self-election despite view not showing every configured member up. It
// holds iff any of: a prior freshness attempt already saw every configured,
// vote-carrying member reply OK; view itself shows no member as down (the
// common case right after process start, before any heartbeat has had a
// chance to mark a peer down); or the startup grace window has elapsed
// since this Context was constructed.
func (c *Context) PastStartupGrace(view PeerView) bool {
	c.mu.RLock()
	sawAllUp := c.sawAllUpOnce
	startedAt := c.startedAt
	c.mu.RUnlock()

	if sawAllUp {
		return true
	}
	if !anyMemberReportedDown(view) {
		return true
	}
	return time.Since(startedAt) >= c.Options.StartupGracePeriod
}

// anyMemberReportedDown reports whether view's cached heartbeat state marks
// any configured member as down. A member for whom no heartbeat has been
// recorded yet does not count: it simply hasn't been heard from, which is
// indistinguishable from "just started" at this point.
func anyMemberReportedDown(view PeerView) bool {
	for _, m := range view.Config().Members {
		if hb, known := view.Heartbeat(m.ID); known && !hb.Up {
			return true
		}
	}
	return false
}
