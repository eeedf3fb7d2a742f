package sim

// DPSState is the inline state for a dense pair-shuffle all-reduce task
// (spec.md §3 "All-reduce task (dense pair-shuffle)"): a node-group and a
// round counter; every ordered pair exchanges directly, so no per-peer
// round-counter vector is needed the way ring and multi-ring require one.
type DPSState struct {
	Nodes []int

	round           int
	finishedInRound int
	done            bool
}

// NewDPSState constructs dense pair-shuffle state over the given node-group.
func NewDPSState(nodes []int) *DPSState {
	return &DPSState{Nodes: append([]int(nil), nodes...)}
}

func (d *DPSState) reset() {
	d.round = 0
	d.finishedInRound = 0
	d.done = false
}

// beginDPS implements spec.md §4.5: two rounds, each launching n(n-1)
// flows (one per ordered pair) of size S/n, finishing after round 1.
func (a *Application) beginDPS(t *Task, now Time) {
	d := t.DPS
	if len(d.Nodes) <= 1 {
		t.FinishTime = t.ReadyTime
		t.State = StateFinished
		d.done = true
		a.completeTask(t, t.FinishTime)
		return
	}

	d.round = 0
	d.finishedInRound = 0
	a.launchDPSRound(t, d, t.StartTime)
}

func (a *Application) launchDPSRound(t *Task, d *DPSState, startAt Time) {
	n := len(d.Nodes)
	chunk := t.TransferSize / int64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			desc := &FlowDescriptor{Task: t, SrcIndex: i, Peer: j}
			a.launchFlow(d.Nodes[i], d.Nodes[j], chunk, startAt, microFlowRTO, a.onDPSFlowDone, desc)
		}
	}
}

func (a *Application) onDPSFlowDone(desc *FlowDescriptor) {
	t := desc.Task
	d := t.DPS
	now := a.driver.EventList.Now()
	n := len(d.Nodes)

	d.finishedInRound++
	a.metrics().incFlowsCompleted("dps")

	if d.finishedInRound < n*(n-1) {
		return
	}

	if d.round == 0 {
		d.round = 1
		d.finishedInRound = 0
		a.launchDPSRound(t, d, now)
		return
	}

	d.done = true
	t.FinishTime = now
	t.State = StateFinished
	a.completeTask(t, now)
}
