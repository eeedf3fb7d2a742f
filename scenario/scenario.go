// Package scenario decodes a YAML task-graph description into calls
// against sim.Application's builder API. spec.md §1 excludes task-graph
// file-format parsing from the simulator core's scope; this package is the
// thin external loader that sits in front of it.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dikang/ffsim-core/sim"
)

// File is the decoded shape of a scenario YAML document.
type File struct {
	Devices []DeviceSpec `yaml:"devices"`
	Tasks   []TaskSpec   `yaml:"tasks"`
}

// DeviceSpec describes one device entry. Bandwidth is in the input
// document's raw units; Build scales it by 8*1000 per spec.md §6 "Numeric
// units".
type DeviceSpec struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"`
	Bandwidth int64  `yaml:"bandwidth"`
	Node      int    `yaml:"node"`
	GPU       int    `yaml:"gpu"`
	FromNode  int    `yaml:"from_node"`
	ToNode    int    `yaml:"to_node"`
	FromGPU   int    `yaml:"from_gpu"`
	ToGPU     int    `yaml:"to_gpu"`
}

// TaskSpec describes one task entry. RunTimeSeconds is scaled to
// picoseconds at load time (seconds -> nanoseconds via *1e9, then treated
// as the simulator's nanosecond-denominated tick, per spec.md §6).
type TaskSpec struct {
	ID             string   `yaml:"id"`
	Kind           string   `yaml:"kind"`
	Device         string   `yaml:"device"`
	RunTimeSeconds float64  `yaml:"run_time_seconds"`
	TransferBytes  int64    `yaml:"transfer_bytes"`
	Successors     []string `yaml:"successors"`

	// All-reduce-only fields.
	Nodes    []int   `yaml:"nodes"`
	Rings    [][]int `yaml:"rings"`
	Strategy string  `yaml:"strategy"`
}

// Load reads and decodes a scenario document from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	return &f, nil
}

// deviceKind maps the document's string device kind onto sim.DeviceKind,
// returning a ConfigError for anything unrecognized (spec.md §7
// "Configuration error").
func deviceKind(s string) (sim.DeviceKind, error) {
	switch s {
	case "GPU":
		return sim.DeviceGPU, nil
	case "CPU":
		return sim.DeviceCPU, nil
	case "GPU_COMM":
		return sim.DeviceGPUComm, nil
	case "DRAM_COMM":
		return sim.DeviceDRAMComm, nil
	case "NW_COMM":
		return sim.DeviceNWComm, nil
	default:
		return 0, &sim.ConfigError{Field: "device.kind", Value: s}
	}
}

func taskKind(s string) (sim.TaskKind, error) {
	switch s {
	case "FORWARD":
		return sim.TaskForward, nil
	case "BACKWARD":
		return sim.TaskBackward, nil
	case "COMM":
		return sim.TaskComm, nil
	case "UPDATE":
		return sim.TaskUpdate, nil
	case "BARRIER":
		return sim.TaskBarrier, nil
	case "ALLREDUCE":
		return sim.TaskAllReduce, nil
	default:
		return 0, &sim.ConfigError{Field: "task.kind", Value: s}
	}
}

// secondsToPicoseconds mirrors the original loader's scaling: seconds are
// multiplied by 1e9 to nanoseconds, then treated as the simulator's
// already-nanosecond-denominated tick value before being widened to
// picoseconds (spec.md §6).
func secondsToPicoseconds(seconds float64) sim.Time {
	nanos := seconds * 1e9
	return sim.Time(nanos) * 1000
}

// scaleBandwidth applies the load-time bandwidth scaling (spec.md §6,
// SPEC_FULL.md §12.3): raw input units * 8 * 1000.
func scaleBandwidth(raw int64) int64 {
	return raw * 8 * 1000
}

// Build constructs a sim.Application from the decoded file, resolving
// device and successor references and selecting each all-reduce task's
// strategy. Unresolved device/successor references or unknown kinds are
// reported as *sim.ConfigError.
func Build(id string, f *File, topology sim.Topology, transport sim.Transport, opts ...sim.Option) (*sim.Application, error) {
	app := sim.NewApplication(id, topology, transport, opts...)

	// The configured strategy applies to all-reduce tasks that name none.
	var cfg sim.Config
	for _, opt := range opts {
		opt(&cfg)
	}

	devices := make(map[string]*sim.Device, len(f.Devices))
	for _, d := range f.Devices {
		kind, err := deviceKind(d.Kind)
		if err != nil {
			return nil, err
		}
		dev := sim.NewDevice(d.ID, kind)
		dev.Bandwidth = scaleBandwidth(d.Bandwidth)
		dev.Node, dev.GPU = d.Node, d.GPU
		dev.FromNode, dev.ToNode = d.FromNode, d.ToNode
		dev.FromGPU, dev.ToGPU = d.FromGPU, d.ToGPU
		devices[d.ID] = dev
		app.AddDevice(dev)
	}

	tasks := make(map[string]*sim.Task, len(f.Tasks))
	for _, ts := range f.Tasks {
		kind, err := taskKind(ts.Kind)
		if err != nil {
			return nil, err
		}

		runTime := secondsToPicoseconds(ts.RunTimeSeconds)

		strategy := ts.Strategy
		if strategy == "" && cfg.Strategy == sim.StrategyPS {
			strategy = "PS"
		} else if strategy == "" && cfg.Strategy == sim.StrategyDPS {
			strategy = "DPS"
		}

		var task *sim.Task
		switch {
		case kind == sim.TaskAllReduce && len(ts.Rings) > 0:
			task = sim.NewMultiRingAllReduceTask(ts.ID, ts.Nodes, ts.Rings, runTime, ts.TransferBytes)
		case kind == sim.TaskAllReduce && strategy == "PS":
			task = sim.NewPSAllReduceTask(ts.ID, ts.Nodes, runTime, ts.TransferBytes)
		case kind == sim.TaskAllReduce && strategy == "DPS":
			task = sim.NewDPSAllReduceTask(ts.ID, ts.Nodes, runTime, ts.TransferBytes)
		case kind == sim.TaskAllReduce:
			task = sim.NewRingAllReduceTask(ts.ID, ts.Nodes, runTime, ts.TransferBytes)
		default:
			dev, ok := devices[ts.Device]
			if !ok {
				return nil, &sim.ConfigError{Field: "task.device", Value: ts.Device}
			}
			task = sim.NewTask(ts.ID, kind, dev, runTime, ts.TransferBytes)
		}

		tasks[ts.ID] = task
		app.AddTask(task)
	}

	for _, ts := range f.Tasks {
		t := tasks[ts.ID]
		for _, succID := range ts.Successors {
			succ, ok := tasks[succID]
			if !ok {
				return nil, &sim.ConfigError{Field: "task.successors", Value: succID}
			}
			t.AddSuccessor(succ)
		}
	}

	app.Finalize()
	return app, nil
}
