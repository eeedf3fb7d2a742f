package sim

// FlowTerminal is the sink or source terminal appended to a cloned path to
// produce the concrete route handed to the transport (spec.md §4.6 step 3).
type FlowTerminal struct {
	Node int
}

// launchFlow implements the flow launcher (spec.md §4.6): it draws a
// uniformly random forward and reverse path from the topology's catalog,
// clones them into routes, constructs a transport flow source bound to cb,
// and connects it at startAt. desc is handed to the transport; ownership
// transfers to it until the completion callback fires and releases it.
func (a *Application) launchFlow(src, dst int, size int64, startAt, rto Time, cb FlowCompletionFunc, desc *FlowDescriptor) {
	physSrc := a.cfg.resolveGPU(src)
	physDst := a.cfg.resolveGPU(dst)

	forwardCandidates := a.Topology.Paths(physSrc, physDst)
	reverseCandidates := a.Topology.Paths(physDst, physSrc)

	forwardPath := forwardCandidates[a.driver.randIntn(len(forwardCandidates))].Clone()
	reversePath := reverseCandidates[a.driver.randIntn(len(reverseCandidates))].Clone()

	forward := append(Route(forwardPath), &FlowTerminal{Node: physDst})
	reverse := append(Route(reversePath), &FlowTerminal{Node: physSrc})

	source := a.Transport.NewFlowSource(physSrc, physDst, cb, desc)
	source.SetFlowSize(size)
	source.SetSSThresh(a.cfg.SSThresh)
	source.SetRTO(rto)
	source.Connect(forward, reverse, startAt)
}

// launchCommFlow starts the single flow backing an ordinary COMM task. Its
// FINISHED transition is entirely driven by the resulting callback (spec.md
// §4.1 "Communication task"), not by the generic task-start/finish event
// pair used for compute-class tasks.
func (a *Application) launchCommFlow(task *Task, src, dst int, startAt Time) {
	desc := &FlowDescriptor{Task: task}
	a.launchFlow(src, dst, task.TransferSize, startAt, commRTO, a.onCommFlowDone, desc)
}

func (a *Application) onCommFlowDone(desc *FlowDescriptor) {
	task := desc.Task
	now := a.driver.EventList.Now()
	task.FinishTime = now
	task.State = StateFinished
	a.metrics().observeTaskLatency(task.Kind, now-task.StartTime)
	a.completeTask(task, now)
}
