package sim

// Task is the tagged-variant representation of every schedulable unit in a
// task graph. The variant set is closed (spec.md §9 "Polymorphic tasks"):
// ordinary compute/comm tasks carry no extra state, while the four
// all-reduce strategies each carry their own inline state struct, exactly
// one of which is non-nil whenever Kind == TaskAllReduce.
type Task struct {
	ID   string
	Kind TaskKind

	// app is a non-owning back-pointer; Application exclusively owns the
	// Task (spec.md §3 Ownership).
	app *Application

	// Device is non-owning. Ordinary compute and comm tasks are bound to
	// one; all-reduce tasks are not (they drive a sequence of flows, not a
	// single device occupancy span).
	Device *Device

	RunTime      Time  // nominal run-time, picoseconds
	TransferSize int64 // bytes

	// successors are appended by AddSuccessor, in call order (spec.md §5
	// "Successor-enqueue order matches successor-list order").
	successors []*Task

	pendingPredecessors        int
	initialPendingPredecessors int

	State      TaskState
	ReadyTime  Time
	StartTime  Time
	FinishTime Time

	// index is this task's position in the application's iteration order,
	// used to compute the epsilon offset for its initial-task schedule
	// (spec.md §4.1 start_initial_tasks).
	index int

	Ring      *RingState
	MultiRing *MultiRingState
	PS        *PSState
	DPS       *DPSState
}

// NewTask constructs an ordinary (non-all-reduce) task.
func NewTask(id string, kind TaskKind, device *Device, runTime Time, transferSize int64) *Task {
	return &Task{
		ID:           id,
		Kind:         kind,
		Device:       device,
		RunTime:      runTime,
		TransferSize: transferSize,
		State:        StateNotReady,
	}
}

// NewRingAllReduceTask constructs an all-reduce task expanded by the ring
// strategy (spec.md §4.2).
func NewRingAllReduceTask(id string, nodes []int, runTime Time, operatorSize int64) *Task {
	return &Task{
		ID:           id,
		Kind:         TaskAllReduce,
		RunTime:      runTime,
		TransferSize: operatorSize,
		State:        StateNotReady,
		Ring:         NewRingState(nodes),
	}
}

// NewMultiRingAllReduceTask constructs an all-reduce task expanded by the
// multi-ring strategy (spec.md §4.3). Its presence implies MultiRing
// regardless of the application's configured default strategy.
func NewMultiRingAllReduceTask(id string, nodes []int, rings [][]int, runTime Time, operatorSize int64) *Task {
	return &Task{
		ID:           id,
		Kind:         TaskAllReduce,
		RunTime:      runTime,
		TransferSize: operatorSize,
		State:        StateNotReady,
		MultiRing:    NewMultiRingState(nodes, rings),
	}
}

// NewPSAllReduceTask constructs an all-reduce task expanded by the
// parameter-server strategy (spec.md §4.4); nodes[0] is always the server.
func NewPSAllReduceTask(id string, nodes []int, runTime Time, operatorSize int64) *Task {
	return &Task{
		ID:           id,
		Kind:         TaskAllReduce,
		RunTime:      runTime,
		TransferSize: operatorSize,
		State:        StateNotReady,
		PS:           NewPSState(nodes),
	}
}

// NewDPSAllReduceTask constructs an all-reduce task expanded by the dense
// pair-shuffle strategy (spec.md §4.5).
func NewDPSAllReduceTask(id string, nodes []int, runTime Time, operatorSize int64) *Task {
	return &Task{
		ID:           id,
		Kind:         TaskAllReduce,
		RunTime:      runTime,
		TransferSize: operatorSize,
		State:        StateNotReady,
		DPS:          NewDPSState(nodes),
	}
}

// AddSuccessor records that t must decrement succ's pending-predecessor
// counter on finish. Order of calls determines successor-enqueue order.
func (t *Task) AddSuccessor(succ *Task) {
	t.successors = append(t.successors, succ)
	succ.pendingPredecessors++
}

// isAllReduce reports whether t carries one of the four all-reduce variant
// states.
func (t *Task) isAllReduce() bool {
	return t.Ring != nil || t.MultiRing != nil || t.PS != nil || t.DPS != nil
}

// allReduceFinished reports whether every internal micro-round has
// completed for every ring this all-reduce task owns (spec.md §3
// Invariants).
func (t *Task) allReduceFinished() bool {
	switch {
	case t.Ring != nil:
		return t.Ring.done
	case t.MultiRing != nil:
		return t.MultiRing.finishedRings == len(t.MultiRing.Rings)
	case t.PS != nil:
		return t.PS.done
	case t.DPS != nil:
		return t.DPS.done
	default:
		return true
	}
}
