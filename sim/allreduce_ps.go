package sim

// PSState is the inline state for a parameter-server all-reduce task
// (spec.md §3 "All-reduce task (parameter-server)"): a node-group whose
// first member is always the server (spec.md §9 Open Question 3 — the
// source's alternate explicit-server-id constructor is not reproduced).
type PSState struct {
	Nodes []int

	round           int
	finishedInRound int
	done            bool
}

// NewPSState constructs parameter-server state with Nodes[0] as the server.
func NewPSState(nodes []int) *PSState {
	return &PSState{Nodes: append([]int(nil), nodes...)}
}

func (p *PSState) reset() {
	p.round = 0
	p.finishedInRound = 0
	p.done = false
}

// beginPS implements spec.md §4.4: round 0 gathers every non-server flow
// into Nodes[0] starting at start_time (not offset by the local compute
// time the way ring's round 0 is); round 1 scatters back out, starting as
// soon as round 0's last flow completes.
func (a *Application) beginPS(t *Task, now Time) {
	p := t.PS
	if len(p.Nodes) <= 1 {
		t.FinishTime = t.ReadyTime
		t.State = StateFinished
		p.done = true
		a.completeTask(t, t.FinishTime)
		return
	}

	p.round = 0
	p.finishedInRound = 0
	a.launchPSRound(t, p, t.StartTime)
}

func (a *Application) launchPSRound(t *Task, p *PSState, startAt Time) {
	server := p.Nodes[0]
	for i := 1; i < len(p.Nodes); i++ {
		desc := &FlowDescriptor{Task: t, SrcIndex: i}
		if p.round == 0 {
			a.launchFlow(p.Nodes[i], server, t.TransferSize, startAt, microFlowRTO, a.onPSFlowDone, desc)
		} else {
			a.launchFlow(server, p.Nodes[i], t.TransferSize, startAt, microFlowRTO, a.onPSFlowDone, desc)
		}
	}
}

func (a *Application) onPSFlowDone(desc *FlowDescriptor) {
	t := desc.Task
	p := t.PS
	now := a.driver.EventList.Now()

	p.finishedInRound++
	a.metrics().incFlowsCompleted("ps")

	if p.finishedInRound < len(p.Nodes)-1 {
		return
	}

	if p.round == 0 {
		p.round = 1
		p.finishedInRound = 0
		a.launchPSRound(t, p, now)
		return
	}

	p.done = true
	t.FinishTime = now
	t.State = StateFinished
	a.completeTask(t, now)
}
