package sim

// RingState is the inline state for a ring all-reduce task (spec.md §3
// "All-reduce task (ring)"): a node-group, the current round, a per-peer
// round counter for divergence detection, and the operator size actually
// in flight (post small-message inflation, if any).
type RingState struct {
	Nodes []int

	round           int
	totalRounds     int
	finishedInRound int
	finishedRounds  []int
	operatorSize    int64
	done            bool
}

// NewRingState constructs ring all-reduce state over the given node-group.
// The node-group is fixed configuration and survives reset_and_restart;
// only the round progress below it is reset between iterations.
func NewRingState(nodes []int) *RingState {
	return &RingState{Nodes: append([]int(nil), nodes...)}
}

func (r *RingState) reset() {
	r.round = 0
	r.totalRounds = 0
	r.finishedInRound = 0
	r.finishedRounds = nil
	r.operatorSize = 0
	r.done = false
}

// beginRing implements spec.md §4.2. n == 1 finishes immediately with no
// flows; otherwise the operator size is inflated if small, and round 0's
// flows start at start_time + T.
func (a *Application) beginRing(t *Task, now Time) {
	r := t.Ring
	n := len(r.Nodes)

	if n == 1 {
		t.FinishTime = t.ReadyTime
		t.State = StateFinished
		r.done = true
		a.completeTask(t, t.FinishTime)
		return
	}

	r.operatorSize = inflatedOperatorSize(t.TransferSize, n)
	r.totalRounds = 2 * (n - 1)
	r.round = 0
	r.finishedInRound = 0
	r.finishedRounds = make([]int, n)

	a.launchRingRound(t, r, t.StartTime+t.RunTime)
}

func (a *Application) launchRingRound(t *Task, r *RingState, startAt Time) {
	n := len(r.Nodes)
	chunk := r.operatorSize / int64(n)
	for i, node := range r.Nodes {
		peerIdx := (i + 1) % n
		desc := &FlowDescriptor{Task: t, SrcIndex: i, Peer: peerIdx}
		a.launchFlow(node, r.Nodes[peerIdx], chunk, startAt, microFlowRTO, a.onRingFlowDone, desc)
	}
}

func (a *Application) onRingFlowDone(desc *FlowDescriptor) {
	t := desc.Task
	r := t.Ring
	now := a.driver.EventList.Now()

	if r.finishedRounds[desc.SrcIndex] != r.round {
		a.abort(t, "ring all-reduce round-counter divergence")
	}
	r.finishedRounds[desc.SrcIndex]++
	r.finishedInRound++
	a.metrics().incFlowsCompleted("ring")

	if r.finishedInRound < len(r.Nodes) {
		return
	}
	r.finishedInRound = 0

	if r.round == 0 && ringShortCircuits(r.operatorSize, len(r.Nodes)) {
		r.done = true
		t.FinishTime = now
		t.State = StateFinished
		a.completeTask(t, now)
		return
	}

	r.round++
	if r.round >= r.totalRounds {
		r.done = true
		t.FinishTime = now
		t.State = StateFinished
		a.completeTask(t, now)
		return
	}

	a.launchRingRound(t, r, now)
}
