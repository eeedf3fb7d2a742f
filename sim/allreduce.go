package sim

// beginAllReduce dispatches a just-started all-reduce task to its
// variant-specific begin() (spec.md §4.1 "All-reduce task. On task-start,
// call its begin()"). Exactly one of Task.Ring/MultiRing/PS/DPS is non-nil
// by construction.
func (a *Application) beginAllReduce(t *Task, now Time) {
	switch {
	case t.Ring != nil:
		a.beginRing(t, now)
	case t.MultiRing != nil:
		a.beginMultiRing(t, now)
	case t.PS != nil:
		a.beginPS(t, now)
	case t.DPS != nil:
		a.beginDPS(t, now)
	default:
		a.abort(t, "all-reduce task has no variant state")
	}
}

// resetAllReduce restores an all-reduce task's in-progress round state for
// the next iteration, without discarding its fixed configuration
// (node-group, jump lists): that configuration is set once at task
// construction and survives reset_and_restart.
func (t *Task) resetAllReduce() {
	switch {
	case t.Ring != nil:
		t.Ring.reset()
	case t.MultiRing != nil:
		t.MultiRing.reset()
	case t.PS != nil:
		t.PS.reset()
	case t.DPS != nil:
		t.DPS.reset()
	}
}

// inflatedOperatorSize applies the small-message floor (spec.md §4.2): if
// the nominal size is under one MTU-per-peer, it is inflated to account for
// the missing reduce-scatter/all-gather decomposition at small sizes.
func inflatedOperatorSize(nominal int64, n int) int64 {
	if nominal < int64(smallMessageMTU)*int64(n) {
		return nominal * int64(2*(n-1)) / int64(n)
	}
	return nominal
}

// ringShortCircuits reproduces the bug-compatible short-circuit test
// (spec.md §9 Open Question 2): operatorSize here is whatever size round 0
// actually ran at (the inflated size if inflation fired, the nominal size
// otherwise), and the same recomputation is applied unconditionally either
// way.
func ringShortCircuits(operatorSize int64, n int) bool {
	check := float64(operatorSize) / (float64(2*(n-1)) / float64(n))
	return check <= float64(smallMessageMTU*n)
}
