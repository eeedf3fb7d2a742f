package sim

// Device is a compute or communication resource a task runs on. At most one
// task may be RUNNING against a device at a time (spec.md §3 Invariants);
// the scheduler enforces this by deferring READY tasks while BUSY rather
// than by a per-device queue.
type Device struct {
	ID   string
	Kind DeviceKind

	// Bandwidth is in bits/sec, scaled at load time (raw units * 8 * 1000,
	// spec.md §6 "Numeric units"). Only meaningful for *_COMM device kinds;
	// the core never reads it directly (network contention is the
	// transport's concern), but it is retained for loaders/tests that want
	// to recompute nominal transfer times.
	Bandwidth int64

	// Locator fields identify the device's place in the cluster. Which
	// fields are meaningful depends on Kind: compute devices use Node/GPU,
	// cross-device comm devices use the From*/To* pairs.
	Node     int
	GPU      int
	FromNode int
	ToNode   int
	FromGPU  int
	ToGPU    int

	State     DeviceState
	BusyUpTo  Time
}

// NewDevice constructs an idle device.
func NewDevice(id string, kind DeviceKind) *Device {
	return &Device{ID: id, Kind: kind, State: DeviceIdle}
}
