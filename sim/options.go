package sim

import "github.com/dikang/ffsim-core/sim/emit"

// Config holds the core-relevant configuration subset (spec.md §6
// "Configuration (core-relevant subset)"): ssthresh, the all-reduce
// strategy, and the optional GPU-index permutation every flow endpoint
// passes through.
type Config struct {
	SSThresh int64
	Strategy AllReduceStrategy

	// GPUs is the logical-to-physical node permutation; every flow
	// endpoint resolves through gpus[logical] before reaching the
	// topology/transport (SPEC_FULL.md §12.1). Nil by default; any logical
	// index at or beyond len(GPUs) resolves to itself, so an unset
	// permutation behaves as the identity (spec.md §9 Open Question 1).
	GPUs []int

	// MaxSteps bounds the number of scheduler events an Application's
	// driver will process before aborting, guarding against a
	// misconfigured task graph that never reaches all-finished. Zero means
	// unbounded.
	MaxSteps int

	Metrics *PrometheusMetrics
	Emitter emit.Emitter
}

// Option configures a Config, following the teacher corpus's functional
// options idiom.
type Option func(*Config)

// WithSSThresh sets the transport slow-start threshold, in data-packet-size
// units.
func WithSSThresh(packets int64) Option {
	return func(c *Config) { c.SSThresh = packets }
}

// WithAllReduceStrategy selects the collective expansion algorithm. It is
// overridden by the presence of explicit ring descriptors on an all-reduce
// task, which always imply MultiRing regardless of this setting. The sim
// package itself does not read it; scenario.Build applies it to every
// all-reduce task that names no strategy of its own.
func WithAllReduceStrategy(strategy AllReduceStrategy) Option {
	return func(c *Config) { c.Strategy = strategy }
}

// WithGPUPermutation sets the logical-to-physical node remap. Supplying nil
// or calling this option with an empty slice restores the identity default.
func WithGPUPermutation(perm []int) Option {
	return func(c *Config) { c.GPUs = perm }
}

// WithMaxSteps caps the number of scheduler events processed before the
// driver aborts with an InvariantError, defending against task graphs that
// never reach an all-finished state.
func WithMaxSteps(n int) Option {
	return func(c *Config) { c.MaxSteps = n }
}

// WithMetrics attaches a Prometheus metrics sink to this application. With
// a nil value (the default) the application reports to the metrics handle
// its Driver was constructed with, which may itself be nil (no metrics).
func WithMetrics(m *PrometheusMetrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithEmitter attaches an event emitter. The default is a NullEmitter.
func WithEmitter(e emit.Emitter) Option {
	return func(c *Config) { c.Emitter = e }
}

func newConfig(opts ...Option) *Config {
	c := &Config{
		Strategy: StrategyDefault,
		Emitter:  emit.NullEmitter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveGPU maps a logical node index to its physical index, applying the
// configured permutation or the identity default (spec.md §9 Open Question
// 1; original_source/ffapp.cpp initializes gpus[i] = i before any remap).
func (c *Config) resolveGPU(logical int) int {
	if logical < len(c.GPUs) {
		return c.GPUs[logical]
	}
	return logical
}
