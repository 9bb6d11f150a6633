package elector

import (
	"context"
	"sync"
	"time"
)

// fakeClock is a controllable Clock, grounded on the same injectable-time
// need rafty's own tests satisfy by sleeping on wall-clock time; here it is
// explicit so tie-break and ceiling tests don't need real sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRand always returns min, so tests never wait on real jitter.
type fakeRand struct{}

func (fakeRand) UniformDuration(min, max time.Duration) time.Duration { return min }

// fakePeers hands back a fixed PeerView, letting each test control the
// membership and heartbeat state a phase or responder observes.
type fakePeers struct {
	view PeerView
}

func newFakePeers(config ReplicaSetConfig, heartbeats map[MemberId]HeartbeatInfo) *fakePeers {
	if heartbeats == nil {
		heartbeats = map[MemberId]HeartbeatInfo{}
	}
	return &fakePeers{view: PeerView{config: config, heartbeats: heartbeats}}
}

func (p *fakePeers) Snapshot() PeerView { return p.view }

// fakeOracle is a LogOracle returning a fixed position.
type fakeOracle struct {
	pos LogPosition
}

func (o fakeOracle) LivePosition() LogPosition { return o.pos }

// fakeTransport answers Freshness/Elect RPCs from per-peer canned replies,
// grounded on the same seam grpc_connection.go's real client sits behind:
// nothing above the Transport interface knows the wire is fake.
type fakeTransport struct {
	mu         sync.Mutex
	freshReply map[MemberId]FreshReply
	freshErr   map[MemberId]error
	electReply map[MemberId]ElectReply
	electErr   map[MemberId]error
	freshCalls int
	electCalls int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		freshReply: map[MemberId]FreshReply{},
		freshErr:   map[MemberId]error{},
		electReply: map[MemberId]ElectReply{},
		electErr:   map[MemberId]error{},
	}
}

func (t *fakeTransport) SendFreshQuery(_ context.Context, peer Member, _ FreshQuery) (FreshReply, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.freshCalls++
	if err, ok := t.freshErr[peer.ID]; ok {
		return FreshReply{}, err
	}
	return t.freshReply[peer.ID], nil
}

func (t *fakeTransport) SendElectRequest(_ context.Context, peer Member, _ ElectRequest) (ElectReply, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.electCalls++
	if err, ok := t.electErr[peer.ID]; ok {
		return ElectReply{}, err
	}
	return t.electReply[peer.ID], nil
}

// newTestContext builds a *Context wired with fakes suitable for phase- and
// coordinator-level tests, with a two-second-per-call timeout so no test
// depends on the production PerCallTimeout default.
func newTestContext(self Member, config ReplicaSetConfig, heartbeats map[MemberId]HeartbeatInfo, transport Transport, oracle LogOracle) *Context {
	opts := NewOptions("testset")
	opts.PerCallTimeout = 2 * time.Second
	opts.ElectionCeiling = 2 * time.Second
	opts.TieSleepMin = time.Millisecond
	opts.TieSleepMax = 2 * time.Millisecond
	opts.StartupGracePeriod = 0

	ctx := NewContext(self, newFakePeers(config, heartbeats), oracle, NewEpochStore(0), transport, nil, opts)
	ctx.Clock = newFakeClock(time.Now())
	ctx.Rand = fakeRand{}
	return ctx
}
