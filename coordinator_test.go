package elector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// epochRacingTransport answers freshness normally, but on the first Elect
// RPC it dispatches, it raises the shared EpochStore past whatever this
// node is about to propose — simulating a concurrent winner's epoch
// landing mid-flight.
type epochRacingTransport struct {
	mu     sync.Mutex
	epoch  *EpochStore
	fresh  map[MemberId]FreshReply
	elect  map[MemberId]ElectReply
	stolen bool
}

func (t *epochRacingTransport) SendFreshQuery(_ context.Context, peer Member, _ FreshQuery) (FreshReply, error) {
	return t.fresh[peer.ID], nil
}

func (t *epochRacingTransport) SendElectRequest(_ context.Context, peer Member, _ ElectRequest) (ElectReply, error) {
	t.mu.Lock()
	if !t.stolen {
		t.stolen = true
		t.epoch.Observe(999)
	}
	t.mu.Unlock()
	return t.elect[peer.ID], nil
}

func TestCoordinatorTrigger(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	t.Run("clean_election_wins_and_becomes_primary", func(t *testing.T) {
		config := threeNodeConfig()
		heartbeats := map[MemberId]HeartbeatInfo{
			2: {Up: true, LastContactTime: now},
			3: {Up: true, LastContactTime: now},
		}
		transport := newFakeTransport()
		transport.freshReply[2] = FreshReply{}
		transport.freshReply[3] = FreshReply{}
		transport.electReply[2] = ElectReply{Vote: 1}
		transport.electReply[3] = ElectReply{Vote: 1}

		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, heartbeats, transport, fakeOracle{})
		ctx.AssumePrimary = func(PrimaryEpoch) bool { return true }
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		assert.NoError(err)
		assert.Equal(PrimaryState, coord.State())
		assert.Equal(Primary, ctx.OwnRole())
	})

	t.Run("stale_candidate_aborts_before_electing", func(t *testing.T) {
		config := threeNodeConfig()
		transport := newFakeTransport()
		transport.freshReply[2] = FreshReply{Fresher: true}
		transport.freshReply[3] = FreshReply{}

		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, nil, transport, fakeOracle{})
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		assert.ErrorIs(err, ErrNotFreshest)
		assert.Equal(Idle, coord.State())
		assert.Equal(Secondary, ctx.OwnRole())
		assert.Equal(0, transport.electCalls)
	})

	t.Run("priority_veto_aborts_before_electing", func(t *testing.T) {
		config := threeNodeConfig()
		heartbeats := map[MemberId]HeartbeatInfo{
			3: {Up: true, LastContactTime: now},
		}
		transport := newFakeTransport()
		transport.freshReply[2] = FreshReply{Veto: true, VetoReason: "lower priority than 3"}
		transport.freshReply[3] = FreshReply{}

		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, heartbeats, transport, fakeOracle{})
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		v, ok := AsVeto(err)
		assert.True(ok)
		assert.Equal("lower priority than 3", v.Reason)
		assert.Equal(0, transport.electCalls)
	})

	t.Run("lost_majority_at_the_ballot_aborts_the_election", func(t *testing.T) {
		config := threeNodeConfig()
		transport := newFakeTransport()
		transport.freshReply[2] = FreshReply{}
		transport.freshReply[3] = FreshReply{}
		transport.electReply[2] = ElectReply{Vote: VetoVoteWeight}
		transport.electReply[3] = ElectReply{Vote: 0}

		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, nil, transport, fakeOracle{})
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		assert.ErrorIs(err, ErrInsufficientVotes)
		assert.Equal(Secondary, ctx.OwnRole())
	})

	t.Run("racing_elections_leave_the_loser_with_epoch_rejected", func(t *testing.T) {
		config := threeNodeConfig()
		transport := &epochRacingTransport{
			fresh: map[MemberId]FreshReply{2: {}, 3: {}},
			elect: map[MemberId]ElectReply{2: {Vote: 1}, 3: {Vote: 1}},
		}

		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, nil, transport, fakeOracle{})
		transport.epoch = ctx.Epoch
		coord := NewCoordinator(ctx)

		// A concurrent winner commits a higher epoch while this node's
		// own elect requests are still in flight.
		err := coord.Trigger(context.Background())
		assert.ErrorIs(err, ErrEpochRejected)
	})

	t.Run("arbiter_never_runs_for_election", func(t *testing.T) {
		config := threeNodeConfig()
		transport := newFakeTransport()
		ctx := newTestContext(Member{ID: 1, Votes: 1, ArbiterOnly: true}, config, nil, transport, fakeOracle{})
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		assert.NoError(err)
		assert.Equal(0, transport.freshCalls)
		assert.Equal(Secondary, ctx.OwnRole())
	})

	t.Run("still_stepped_down_refuses_to_run", func(t *testing.T) {
		config := threeNodeConfig()
		transport := newFakeTransport()
		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, nil, transport, fakeOracle{})
		clock := ctx.Clock.(*fakeClock)
		ctx.SetSteppedDownUntil(clock.Now().Add(time.Hour))
		coord := NewCoordinator(ctx)

		err := coord.Trigger(context.Background())
		assert.NoError(err)
		assert.Equal(0, transport.freshCalls)
	})

	t.Run("second_trigger_cannot_run_concurrently", func(t *testing.T) {
		config := threeNodeConfig()
		transport := newFakeTransport()
		ctx := newTestContext(Member{ID: 1, Votes: 1}, config, nil, transport, fakeOracle{})
		coord := NewCoordinator(ctx)
		coord.running.Store(true)

		err := coord.Trigger(context.Background())
		assert.ErrorIs(err, ErrTimeout)
	})
}
