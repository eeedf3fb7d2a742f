package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTopology is the minimal Topology double used by the all-reduce
// tests: every ordered pair of nodes has exactly one trivial path and one
// direct queue/pipe link.
type fakeTopology struct {
	n int
}

func (f *fakeTopology) Paths(src, dst int) []Path {
	return []Path{{"q", "p"}}
}
func (f *fakeTopology) Queue(a, b int) LinkEndpoint { return "q" }
func (f *fakeTopology) Pipe(a, b int) LinkEndpoint  { return "p" }
func (f *fakeTopology) NumNodes() int               { return f.n }

// fakeTransport completes every flow after a fixed latency, regardless of
// route or size, letting the all-reduce round-count invariants (spec.md §8)
// be checked independently of transport timing behavior.
type fakeTransport struct {
	driver  *Driver
	latency Time
	flows   int
}

func (f *fakeTransport) NewFlowSource(src, dst int, cb FlowCompletionFunc, desc *FlowDescriptor) FlowSource {
	return &fakeFlowSource{transport: f, cb: cb, desc: desc}
}

type fakeFlowSource struct {
	transport *fakeTransport
	cb        FlowCompletionFunc
	desc      *FlowDescriptor
}

func (f *fakeFlowSource) SetFlowSize(int64) {}
func (f *fakeFlowSource) SetSSThresh(int64) {}
func (f *fakeFlowSource) SetRTO(Time)       {}

func (f *fakeFlowSource) Connect(forward, reverse Route, startAt Time) {
	f.transport.flows++
	cb, desc := f.cb, f.desc
	f.transport.driver.EventList.Schedule(handlerFunc(func(now Time) {
		cb(desc)
	}), startAt+f.transport.latency)
}

type handlerFunc func(now Time)

func (h handlerFunc) OnEvent(now Time) { h(now) }

// Scenario 3 (spec.md §8): ring all-reduce, n = 4, S large enough to skip
// inflation. Total flows = 2n(n-1) = 24; completion at start + T + 2(n-1)*L.
func TestRingAllReduceFullRounds(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 4}
	transport := &fakeTransport{driver: driver, latency: 100}

	app := NewApplication("app", topo, transport)
	const T Time = 5
	ring := NewRingAllReduceTask("ar", []int{0, 1, 2, 3}, T, 1<<20) // 1 MiB, no inflation
	app.AddTask(ring)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	require.Equal(t, 24, transport.flows)
	require.Equal(t, T+Time(2*3)*100, ring.FinishTime)
	require.True(t, ring.Ring.done)
}

// Scenario 4 (spec.md §8): ring all-reduce small-message short-circuit.
// n = 4, S = 1 KiB inflates then short-circuits after round 0: exactly n
// flows execute.
func TestRingAllReduceSmallMessageShortCircuits(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 4}
	transport := &fakeTransport{driver: driver, latency: 100}

	app := NewApplication("app", topo, transport)
	ring := NewRingAllReduceTask("ar", []int{0, 1, 2, 3}, 5, 1024)
	app.AddTask(ring)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	require.Equal(t, 4, transport.flows)
	require.True(t, ring.Ring.done)
	require.Equal(t, 0, ring.Ring.round)
}

// A ring all-reduce of n = 1 finishes immediately with no flows (spec.md §8
// Boundaries).
func TestRingAllReduceSingleNodeFinishesImmediately(t *testing.T) {
	driver := newTestDriver(1)
	transport := &fakeTransport{driver: driver, latency: 100}
	app := NewApplication("app", &fakeTopology{n: 1}, transport)

	ring := NewRingAllReduceTask("ar", []int{0}, 5, 1<<20)
	app.AddTask(ring)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	require.Equal(t, 0, transport.flows)
	require.Equal(t, ring.ReadyTime, ring.FinishTime)
}

// Scenario 5 (spec.md §8): parameter-server all-reduce, n = 5. Round 0 = 4
// flows into N[0]; round 1 = 4 flows out; total 8.
func TestPSAllReduceEightFlows(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 5}
	transport := &fakeTransport{driver: driver, latency: 50}

	app := NewApplication("app", topo, transport)
	ps := NewPSAllReduceTask("ar", []int{0, 1, 2, 3, 4}, 5, 1<<20)
	app.AddTask(ps)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	require.Equal(t, 8, transport.flows)
	require.True(t, ps.PS.done)
}

// Dense pair-shuffle all-reduce completes 2n(n-1) flows (spec.md §8).
func TestDPSAllReduceFlowCount(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 4}
	transport := &fakeTransport{driver: driver, latency: 50}

	app := NewApplication("app", topo, transport)
	dps := NewDPSAllReduceTask("ar", []int{0, 1, 2, 3}, 5, 1<<20)
	app.AddTask(dps)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	n := 4
	require.Equal(t, 2*n*(n-1), transport.flows)
	require.True(t, dps.DPS.done)
}

// Multi-ring all-reduce finishes only once every ring reaches its terminal
// round, running the full 2n(n-1) flows per ring (n = 4, R = 2 rings here)
// when S is large enough to avoid both inflation and the short-circuit.
func TestMultiRingAllReduceFinishesAllRings(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 8}
	transport := &fakeTransport{driver: driver, latency: 20}

	app := NewApplication("app", topo, transport)
	rings := [][]int{{1, 1, 1}, {2, 2, 2}}
	mr := NewMultiRingAllReduceTask("ar", []int{0, 1, 2, 3}, rings, 5, 1<<20)
	app.AddTask(mr)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	n, r := 4, len(rings)
	require.Equal(t, 2*n*(n-1)*r, transport.flows)
	require.True(t, mr.MultiRing.finishedRings == len(rings))
	for _, done := range mr.MultiRing.ringDone {
		require.True(t, done)
	}
}

// TestMultiRingAllReduceMidSizeRunsAllRounds guards against scaling the
// short-circuit test by the per-flow size (operatorSize/n/R) instead of the
// full collective size: n = 4, R = 2, S = 256 KiB should run all 2(n-1) = 6
// rounds per ring (48 flows total), not short-circuit after round 0 (8
// flows), which is what a per-flow-scaled operand would wrongly trigger
// (256 KiB / 8 = 32768, 32768/1.5 = 21845 <= 9000*4).
func TestMultiRingAllReduceMidSizeRunsAllRounds(t *testing.T) {
	driver := newTestDriver(1)
	topo := &fakeTopology{n: 8}
	transport := &fakeTransport{driver: driver, latency: 20}

	app := NewApplication("app", topo, transport)
	rings := [][]int{{1, 1, 1}, {2, 2, 2}}
	mr := NewMultiRingAllReduceTask("ar", []int{0, 1, 2, 3}, rings, 5, 256*1024)
	app.AddTask(mr)
	app.Finalize()
	driver.Register(app)

	driver.Run()

	n, r := 4, len(rings)
	require.Equal(t, 2*n*(n-1)*r, transport.flows)
	for _, rounds := range mr.MultiRing.totalRounds {
		require.Equal(t, 2*(n-1), rounds)
	}
	for j := range rings {
		require.Equal(t, mr.MultiRing.totalRounds[j], mr.MultiRing.round[j])
	}
}
