package sim

// MultiRingState is the inline state for a multi-ring all-reduce task
// (spec.md §3 "All-reduce task (multi-ring)"): a node-group, R independently
// progressing rings each described by an ordered jump list, and per-ring
// round-progress vectors.
type MultiRingState struct {
	Nodes []int
	Rings [][]int // one jump list per ring

	totalJump       []int
	round           []int
	totalRounds     []int
	finishedInRound []int
	finishedRounds  [][]int
	ringDone        []bool
	finishedRings   int
	operatorSize    int64
}

// NewMultiRingState constructs multi-ring state over the given node-group
// and jump lists. Nodes and Rings are fixed configuration that survives
// reset_and_restart; only round progress is reset between iterations.
func NewMultiRingState(nodes []int, rings [][]int) *MultiRingState {
	return &MultiRingState{
		Nodes: append([]int(nil), nodes...),
		Rings: rings,
	}
}

func (m *MultiRingState) reset() {
	m.totalJump = nil
	m.round = nil
	m.totalRounds = nil
	m.finishedInRound = nil
	m.finishedRounds = nil
	m.ringDone = nil
	m.finishedRings = 0
	m.operatorSize = 0
}

// beginMultiRing implements spec.md §4.3: operatorSize is the full
// collective size, inflated if small exactly like the single ring
// (allreduce_ring.go's beginRing); it is only split across the node-group
// partition and the parallel rings (operatorSize/n/R) when sizing each
// flow. Every ring's round 0 starts independently at start_time + T.
func (a *Application) beginMultiRing(t *Task, now Time) {
	m := t.MultiRing
	n := len(m.Nodes)
	r := len(m.Rings)

	m.operatorSize = inflatedOperatorSize(t.TransferSize, n)
	m.totalJump = make([]int, r)
	m.round = make([]int, r)
	m.totalRounds = make([]int, r)
	m.finishedInRound = make([]int, r)
	m.finishedRounds = make([][]int, r)
	m.ringDone = make([]bool, r)
	m.finishedRings = 0

	for j, jumps := range m.Rings {
		sum := 0
		for _, step := range jumps {
			sum += step
		}
		m.totalJump[j] = sum
		m.totalRounds[j] = 2 * (n - 1)
		m.finishedRounds[j] = make([]int, n)
		a.launchMultiRingRound(t, j, t.StartTime+t.RunTime)
	}
}

func (a *Application) launchMultiRingRound(t *Task, ringIdx int, startAt Time) {
	m := t.MultiRing
	n := len(m.Nodes)
	r := len(m.Rings)
	jumps := m.Rings[ringIdx]
	chunk := m.operatorSize / int64(n) / int64(r)
	for i := range m.Nodes {
		desc := &FlowDescriptor{Task: t, SrcIndex: i, RingIndex: ringIdx, Peer: (i + m.totalJump[ringIdx]) % n}
		a.launchMultiRingFlow(m.Nodes[i], jumps, chunk, startAt, desc)
	}
}

// launchMultiRingFlow builds the forward and reverse routes directly from
// the topology's queues/pipes grids by walking the jump list hop by hop
// (spec.md §4.3), rather than drawing from the path catalog the way
// launchFlow does for ring/PS/DPS flows.
func (a *Application) launchMultiRingFlow(srcLogical int, jumps []int, size int64, startAt Time, desc *FlowDescriptor) {
	nnodes := a.Topology.NumNodes()
	phys := a.cfg.resolveGPU(srcLogical)

	forward, end := a.walkJumps(phys, jumps, nnodes)
	forward = append(forward, &FlowTerminal{Node: end})

	reverseJumps := make([]int, len(jumps))
	for i, step := range jumps {
		reverseJumps[len(jumps)-1-i] = -step
	}
	reverse, _ := a.walkJumps(end, reverseJumps, nnodes)
	reverse = append(reverse, &FlowTerminal{Node: phys})

	source := a.Transport.NewFlowSource(phys, end, a.onMultiRingFlowDone, desc)
	source.SetFlowSize(size)
	source.SetSSThresh(a.cfg.SSThresh)
	source.SetRTO(microFlowRTO)
	source.Connect(forward, reverse, startAt)
}

func (a *Application) walkJumps(start int, jumps []int, nnodes int) (Route, int) {
	idx := start
	route := make(Route, 0, 2*len(jumps))
	for _, step := range jumps {
		next := ((idx+step)%nnodes + nnodes) % nnodes
		route = append(route, a.Topology.Queue(idx, next), a.Topology.Pipe(idx, next))
		idx = next
	}
	return route, idx
}

func (a *Application) onMultiRingFlowDone(desc *FlowDescriptor) {
	t := desc.Task
	m := t.MultiRing
	j := desc.RingIndex
	now := a.driver.EventList.Now()

	if m.finishedRounds[j][desc.SrcIndex] != m.round[j] {
		a.abort(t, "multi-ring all-reduce round-counter divergence")
	}
	m.finishedRounds[j][desc.SrcIndex]++
	m.finishedInRound[j]++
	a.metrics().incFlowsCompleted("multi_ring")

	if m.finishedInRound[j] < len(m.Nodes) {
		return
	}
	m.finishedInRound[j] = 0

	n := len(m.Nodes)
	if m.round[j] == 0 && ringShortCircuits(m.operatorSize, n) {
		a.finishMultiRingRing(t, j, now)
		return
	}

	m.round[j]++
	if m.round[j] >= m.totalRounds[j] {
		a.finishMultiRingRing(t, j, now)
		return
	}

	a.launchMultiRingRound(t, j, now)
}

func (a *Application) finishMultiRingRing(t *Task, ringIdx int, now Time) {
	m := t.MultiRing
	m.ringDone[ringIdx] = true
	m.finishedRings++
	if m.finishedRings < len(m.Rings) {
		return
	}
	t.FinishTime = now
	t.State = StateFinished
	a.completeTask(t, now)
}
