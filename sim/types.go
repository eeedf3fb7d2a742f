// Package sim implements the core of a discrete-event simulator for a
// distributed deep-learning training workload: a dependency-tracked,
// device-serialized task-graph scheduler; a collective all-reduce expansion
// engine covering ring, multi-ring, parameter-server, and dense pair-shuffle
// strategies; and the narrow flow-completion callback contract that lets a
// congestion-controlled transport feed completions back into the scheduler.
//
// The package is strictly single-threaded: every exported method assumes it
// runs on the same goroutine as the eventlist.List driving it, and none of
// its types are safe for concurrent use.
package sim

import "github.com/dikang/ffsim-core/eventlist"

// Time is simulated time in picoseconds, shared with the eventlist package.
type Time = eventlist.Time

// DeviceKind distinguishes the hardware/logical resource a task runs on.
type DeviceKind int

const (
	DeviceGPU DeviceKind = iota
	DeviceCPU
	DeviceGPUComm
	DeviceDRAMComm
	DeviceNWComm
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceGPU:
		return "GPU"
	case DeviceCPU:
		return "CPU"
	case DeviceGPUComm:
		return "GPU_COMM"
	case DeviceDRAMComm:
		return "DRAM_COMM"
	case DeviceNWComm:
		return "NW_COMM"
	default:
		return "UNKNOWN_DEVICE"
	}
}

// DeviceState is a device's busy/idle occupancy.
type DeviceState int

const (
	DeviceIdle DeviceState = iota
	DeviceBusy
)

// TaskKind distinguishes the ordinary task kinds from the all-reduce
// variants, which carry their own kind-specific state (see Task).
type TaskKind int

const (
	TaskForward TaskKind = iota
	TaskBackward
	TaskComm
	TaskUpdate
	TaskBarrier
	TaskAllReduce
)

func (k TaskKind) String() string {
	switch k {
	case TaskForward:
		return "FORWARD"
	case TaskBackward:
		return "BACKWARD"
	case TaskComm:
		return "COMM"
	case TaskUpdate:
		return "UPDATE"
	case TaskBarrier:
		return "BARRIER"
	case TaskAllReduce:
		return "ALLREDUCE"
	default:
		return "UNKNOWN_TASK"
	}
}

// TaskState is a task's position in its NOT_READY -> READY -> RUNNING ->
// FINISHED lifecycle (spec.md §3 Invariants: monotone, no skips or
// reversals except the iteration-reset step).
type TaskState int

const (
	StateNotReady TaskState = iota
	StateReady
	StateRunning
	StateFinished
)

func (s TaskState) String() string {
	switch s {
	case StateNotReady:
		return "NOT_READY"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN_STATE"
	}
}

// AllReduceStrategy selects the collective expansion algorithm for an
// all-reduce task. MultiRing is implied whenever the task carries explicit
// ring descriptors, independent of this field (spec.md §6).
type AllReduceStrategy int

const (
	StrategyDefault AllReduceStrategy = iota // == Ring
	StrategyRing
	StrategyMultiRing
	StrategyPS
	StrategyDPS
)

// smallMessageMTU is the per-peer MTU-equivalent floor (spec.md §4.2) below
// which an all-reduce's operator size is inflated to account for the
// missing reduce-scatter/all-gather decomposition at small sizes.
const smallMessageMTU = 9000

// commRTO and microFlowRTO are the retransmit timeouts the flow launcher
// assigns to standalone communication tasks and to every all-reduce
// micro-flow respectively (spec.md §4.6), in picoseconds. The multi-ring
// variant in the original source used a distinct 10ms RTO for its
// micro-flows; that asymmetry is not reproduced here (see DESIGN.md).
const (
	commRTO      Time = 10 * 1_000_000_000 // 10ms
	microFlowRTO Time = 1 * 1_000_000_000  // 1ms
)
