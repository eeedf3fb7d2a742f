package sim

// Topology is the external collaborator providing path enumeration and
// direct link accessors (spec.md §6 "Topology (consumed)"). The core clones
// whatever Paths returns; it never mutates or retains the result.
type Topology interface {
	// Paths returns the candidate routes from src to dst. Each path is an
	// ordered sequence of opaque link endpoints (queues/pipes); the core
	// treats path contents as opaque and only clones/appends to them.
	Paths(src, dst int) []Path

	// Queue and Pipe expose the direct link grids the multi-ring expander
	// walks to build a route from a jump list (spec.md §4.3), rather than
	// from the path catalog Paths returns.
	Queue(a, b int) LinkEndpoint
	Pipe(a, b int) LinkEndpoint

	// NumNodes is the physical node count backing the "mod nnodes"
	// arithmetic a multi-ring's jump list wraps around (spec.md §4.3).
	NumNodes() int
}

// Path is an ordered, opaque sequence of link endpoints making up one
// candidate route between two nodes.
type Path []LinkEndpoint

// Clone returns an independent copy of the path, since the core owns its
// own route once constructed and the topology's catalog must remain
// unmodified by callers.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// LinkEndpoint is an opaque handle to one queue or pipe along a route. The
// core never inspects its contents; it only threads it through to the
// transport.
type LinkEndpoint interface{}

// Route is the concrete forward or reverse path handed to the transport at
// connect time: a cloned path plus the flow's terminal endpoint.
type Route []LinkEndpoint

// FlowDescriptor is the opaque token passed through a flow's completion
// callback (spec.md §3 "Flow descriptor", §9 "Flow descriptors as opaque
// tokens"). Ownership transfers to the transport at launch and back to the
// core in the completion callback, which is the only place a
// FlowDescriptor is released.
type FlowDescriptor struct {
	Task *Task

	// SrcIndex, RingIndex, and Peer carry whatever indices the completion
	// handler needs to identify which round/ring/peer this flow belonged
	// to. Not every all-reduce variant uses every field.
	SrcIndex  int
	RingIndex int
	Peer      int
}

// FlowCompletionFunc is invoked exactly once, at the sim-time of the flow's
// completion, on the event-loop thread (spec.md §4.6).
type FlowCompletionFunc func(desc *FlowDescriptor)

// Transport is the external collaborator constructing and connecting
// congestion-controlled flows (spec.md §6 "Transport (consumed)"). The core
// treats it purely as an opaque flow source: it never inspects transport
// internals beyond the setters below and the completion callback.
type Transport interface {
	// NewFlowSource constructs a flow source bound to (src, dst) that will
	// invoke cb exactly once, passing desc, on completion.
	NewFlowSource(src, dst int, cb FlowCompletionFunc, desc *FlowDescriptor) FlowSource
}

// FlowSource is a single congestion-controlled flow awaiting connection.
type FlowSource interface {
	SetFlowSize(bytes int64)
	SetSSThresh(bytes int64)
	SetRTO(rto Time)

	// Connect hands the forward and reverse routes to the transport and
	// starts the flow at startAt. The core releases the path lists it drew
	// the routes from immediately after this call; it does not retain
	// routes once they are handed off.
	Connect(forward, reverse Route, startAt Time)
}
