package sim

import (
	"math/rand"

	"github.com/dikang/ffsim-core/eventlist"
)

// Driver owns the event list and the process-wide application counters
// (spec.md §5 "Global counters", §9): total_apps and finished_apps are
// mutated only at application registration and at the all-tasks-finished
// transition, and need no synchronization because the event loop this
// Driver runs is single-threaded.
type Driver struct {
	EventList *eventlist.List

	applications []*Application
	totalApps    int
	finishedApps int

	// rng is the single process-global pseudo-random generator used for
	// the flow launcher's random path selection (spec.md §9 "Random path
	// selection"). Determinism requires one seed per driver instance.
	rng *rand.Rand

	// metrics is shared across every application registered with this
	// driver; per-run observability (event emission) is instead configured
	// per-Application via WithEmitter, since different applications in the
	// same run may reasonably want different emitters.
	metrics *PrometheusMetrics

	// busyDevices is the process-wide count of devices currently BUSY,
	// across every application registered with this driver; it backs the
	// ffsim_active_devices gauge.
	busyDevices int
}

// NewDriver returns a Driver seeded deterministically from seed, with its
// own fresh event list.
func NewDriver(seed int64, metrics *PrometheusMetrics) *Driver {
	return NewDriverWithEventList(eventlist.New(), seed, metrics)
}

// NewDriverWithEventList returns a Driver that drives an already-constructed
// event list, for callers (such as cmd/ffsim) that need to hand the same
// event list to a Transport implementation before the Driver exists.
func NewDriverWithEventList(el *eventlist.List, seed int64, metrics *PrometheusMetrics) *Driver {
	return &Driver{
		EventList: el,
		rng:       rand.New(rand.NewSource(seed)),
		metrics:   metrics,
	}
}

// adjustBusyDevices updates the process-wide BUSY-device count by delta and
// republishes it on the shared ffsim_active_devices gauge.
func (d *Driver) adjustBusyDevices(delta int) {
	d.busyDevices += delta
	d.metrics.setActiveDevices(d.busyDevices)
}

func (d *Driver) randIntn(n int) int {
	if n <= 1 {
		return 0
	}
	return d.rng.Intn(n)
}

// Register adds app to this driver and increments the global application
// count. Every application must be registered before Run is called.
func (d *Driver) Register(app *Application) {
	app.driver = d
	d.applications = append(d.applications, app)
	d.totalApps++
}

// Run starts every registered application's initial tasks and drives the
// event list to completion. It returns once every application has
// finished its first iteration and the completion handler has instructed
// the event list to stop (spec.md §4.1 step 4). If an application's
// configured MaxSteps is exceeded first, Run does not return: the scheduler
// panics with an *InvariantError.
func (d *Driver) Run() {
	for _, app := range d.applications {
		app.startInitialTasks()
	}
	d.EventList.Run()
}

// allAppsFinishedFirstIteration reports whether every registered
// application has completed at least one iteration.
func (d *Driver) allAppsFinishedFirstIteration() bool {
	return d.finishedApps >= d.totalApps
}
