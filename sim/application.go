package sim

import (
	"github.com/dikang/ffsim-core/eventlist"
	"github.com/dikang/ffsim-core/sim/emit"
)

// Application holds all tasks and devices for one training iteration
// (spec.md §3). It exclusively owns its Task and Device values; tasks hold
// only a non-owning back-pointer to it.
type Application struct {
	ID string

	Topology  Topology
	Transport Transport

	Tasks   map[string]*Task
	Devices map[string]*Device

	// order is the task iteration order used to compute the epsilon offset
	// for initial-task scheduling (spec.md §4.1).
	order []*Task

	finishedTasks   int
	FinalFinishTime Time
	stepCount       int

	IterationCount         int
	FirstIterationTime     Time
	firstIterationRecorded bool

	cfg    *Config
	driver *Driver
}

// NewApplication constructs an empty application bound to the given
// topology and transport collaborators.
func NewApplication(id string, topology Topology, transport Transport, opts ...Option) *Application {
	return &Application{
		ID:        id,
		Topology:  topology,
		Transport: transport,
		Tasks:     make(map[string]*Task),
		Devices:   make(map[string]*Device),
		cfg:       newConfig(opts...),
	}
}

// AddDevice registers a device with the application.
func (a *Application) AddDevice(d *Device) {
	a.Devices[d.ID] = d
}

// AddTask registers a task with the application and appends it to the
// iteration order used for epsilon-offset scheduling.
func (a *Application) AddTask(t *Task) {
	t.app = a
	t.index = len(a.order)
	a.Tasks[t.ID] = t
	a.order = append(a.order, t)
}

// Finalize snapshots each task's current pending-predecessor count as its
// reset target (spec.md §4.1 reset_and_restart). Call it once, after every
// AddTask and AddSuccessor call for this application has been made.
func (a *Application) Finalize() {
	for _, t := range a.order {
		t.initialPendingPredecessors = t.pendingPredecessors
	}
}

func (a *Application) metrics() *PrometheusMetrics {
	if a.cfg.Metrics != nil {
		return a.cfg.Metrics
	}
	return a.driver.metrics
}

// emitEvent records one observable occurrence through the configured
// emitter, defaulting to a no-op NullEmitter (SPEC_FULL.md §10.1).
func (a *Application) emitEvent(taskID, msg string, meta map[string]interface{}) {
	a.cfg.Emitter.Emit(emit.Event{
		RunID:  a.ID,
		Step:   int64(a.stepCount),
		Time:   int64(a.driver.EventList.Now()),
		TaskID: taskID,
		Msg:    msg,
		Meta:   meta,
	})
}

// startInitialTasks marks every zero-predecessor task READY and schedules
// its task-start event at now + k*epsilon, where k is the task's position
// in iteration order, giving initial tasks a deterministic, distinct
// sim-time (spec.md §4.1 start_initial_tasks).
func (a *Application) startInitialTasks() {
	const epsilon Time = 1
	now := a.driver.EventList.Now()
	for _, t := range a.order {
		if t.pendingPredecessors == 0 {
			t.State = StateReady
			t.ReadyTime = now
			a.scheduleTaskEvent(t, now+Time(t.index)*epsilon)
		}
	}
}

func (a *Application) scheduleTaskEvent(t *Task, at Time) {
	a.driver.EventList.Schedule(eventlist.HandlerFunc(func(now Time) {
		a.onTaskEvent(t, now)
	}), at)
}

// onTaskEvent dispatches a fired task-start/finish event by the task's
// current state (spec.md §4.1 "Task state machine (compute-class
// tasks)"). COMM and all-reduce tasks leave RUNNING via their own flow
// completion callbacks, not through this generic path's RUNNING case.
func (a *Application) onTaskEvent(t *Task, now Time) {
	a.stepCount++
	if a.cfg.MaxSteps > 0 && a.stepCount > a.cfg.MaxSteps {
		a.abort(t, "exceeded configured MaxSteps without reaching all-tasks-finished")
	}
	a.metrics().setQueueDepth(a.driver.EventList.Len())

	switch t.State {
	case StateNotReady, StateFinished:
		a.abort(t, "scheduler event fired for a NOT_READY or FINISHED task")

	case StateReady:
		switch {
		case t.Kind == TaskComm:
			t.State = StateRunning
			t.StartTime = now
			a.launchCommFlow(t, t.Device.FromNode, t.Device.ToNode, now)

		case t.isAllReduce():
			t.State = StateRunning
			t.StartTime = now
			a.beginAllReduce(t, now)

		default:
			if t.Device.State == DeviceIdle {
				t.State = StateRunning
				t.StartTime = now
				t.FinishTime = now + t.RunTime
				t.Device.State = DeviceBusy
				t.Device.BusyUpTo = t.FinishTime
				a.driver.adjustBusyDevices(1)
				a.scheduleTaskEvent(t, t.FinishTime)
			} else {
				// READY, device BUSY: defer without changing state.
				a.scheduleTaskEvent(t, t.Device.BusyUpTo)
			}
		}

	case StateRunning:
		// Only reachable for compute-class tasks; COMM/all-reduce tasks
		// transition to FINISHED from their flow-completion callbacks.
		t.State = StateFinished
		t.Device.State = DeviceIdle
		a.driver.adjustBusyDevices(-1)
		a.metrics().observeTaskLatency(t.Kind, t.FinishTime-t.StartTime)
		a.completeTask(t, now)
	}
}

func (a *Application) abort(t *Task, reason string) {
	a.metrics().incSchedulerAborts()
	a.emitEvent(t.ID, "scheduler_abort", map[string]interface{}{"reason": reason})
	panic(&InvariantError{TaskID: t.ID, Reason: reason})
}

// completeTask implements the completion handler (spec.md §4.1 step "For a
// task entering FINISHED").
func (a *Application) completeTask(t *Task, now Time) {
	a.finishedTasks++
	if now > a.FinalFinishTime {
		a.FinalFinishTime = now
	}
	a.emitEvent(t.ID, "task_finished", map[string]interface{}{"kind": t.Kind.String()})

	for _, succ := range t.successors {
		succ.pendingPredecessors--
		if succ.pendingPredecessors == 0 {
			succ.ReadyTime = t.FinishTime
			succ.State = StateReady
			a.scheduleTaskEvent(succ, succ.ReadyTime)
		}
	}

	if a.finishedTasks != len(a.Tasks) {
		return
	}

	a.IterationCount++
	a.metrics().incIterations()
	a.emitEvent(t.ID, "iteration_finished", map[string]interface{}{"iteration": a.IterationCount})
	if !a.firstIterationRecorded {
		a.FirstIterationTime = now
		a.firstIterationRecorded = true
		a.driver.finishedApps++
	}

	if a.driver.allAppsFinishedFirstIteration() {
		a.driver.EventList.SetEndTime(now)
		return
	}
	a.resetAndRestart()
}

// resetAndRestart implements spec.md §4.1 reset_and_restart: zero the
// finished-task count, restore every task to NOT_READY with its original
// predecessor count and cleared timestamps, then start the next iteration's
// initial tasks.
func (a *Application) resetAndRestart() {
	a.finishedTasks = 0
	for _, t := range a.order {
		t.State = StateNotReady
		t.pendingPredecessors = t.initialPendingPredecessors
		t.ReadyTime, t.StartTime, t.FinishTime = 0, 0, 0
		t.resetAllReduce()
	}
	a.startInitialTasks()
}
