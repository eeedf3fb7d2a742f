// Package transport provides a minimal, deterministic reference
// implementation of sim.Transport. spec.md §1 explicitly treats the real
// congestion-controlled transport as an opaque "flow source" outside the
// core's scope; this package is a stand-in good enough to drive the
// repository and its tests end to end, not a substitute for a real
// NDP/DCTCP/TCP model.
package transport

import (
	"github.com/dikang/ffsim-core/eventlist"
	"github.com/dikang/ffsim-core/sim"
)

// CongestionControlled completes every flow after a deterministic
// bandwidth-delay computation: transfer time from flow size and configured
// bandwidth, plus a fixed latency for every hop in the longer of the two
// routes it was connected with.
type CongestionControlled struct {
	EventList *eventlist.List

	// BandwidthBitsPerSec is the link rate used to convert a flow's byte
	// size into a transfer duration.
	BandwidthBitsPerSec int64

	// HopLatency is charged once per link (queue+pipe pair) in the route.
	HopLatency sim.Time
}

// NewCongestionControlled returns a transport driven by el, completing
// flows at bandwidth bits/sec plus hopLatency per hop.
func NewCongestionControlled(el *eventlist.List, bandwidthBitsPerSec int64, hopLatency sim.Time) *CongestionControlled {
	return &CongestionControlled{EventList: el, BandwidthBitsPerSec: bandwidthBitsPerSec, HopLatency: hopLatency}
}

func (c *CongestionControlled) NewFlowSource(src, dst int, cb sim.FlowCompletionFunc, desc *sim.FlowDescriptor) sim.FlowSource {
	return &flowSource{transport: c, src: src, dst: dst, cb: cb, desc: desc}
}

type flowSource struct {
	transport *CongestionControlled
	src, dst  int
	flowSize  int64
	ssthresh  int64
	rto       sim.Time
	cb        sim.FlowCompletionFunc
	desc      *sim.FlowDescriptor
}

func (f *flowSource) SetFlowSize(bytes int64) { f.flowSize = bytes }
func (f *flowSource) SetSSThresh(bytes int64) { f.ssthresh = bytes }
func (f *flowSource) SetRTO(rto sim.Time)      { f.rto = rto }

// Connect schedules the flow's completion callback at startAt plus the
// transfer duration implied by flowSize and the transport's configured
// bandwidth, plus one HopLatency per link along the longer route. The
// completion callback releases desc (spec.md §9 "box-and-leak").
func (f *flowSource) Connect(forward, reverse sim.Route, startAt sim.Time) {
	hops := len(forward)
	if len(reverse) > hops {
		hops = len(reverse)
	}
	// Each hop contributes a queue/pipe pair, so halve to count link
	// traversals rather than individual endpoints; the single flow terminal
	// the core appends to a route is dropped by the integer division.
	linkCount := hops / 2

	var transferPs sim.Time
	if f.transport.BandwidthBitsPerSec > 0 {
		transferPs = sim.Time((f.flowSize * 8 * 1_000_000_000_000) / f.transport.BandwidthBitsPerSec)
	}
	latency := f.transport.HopLatency * sim.Time(linkCount)

	completeAt := startAt + transferPs + latency
	desc := f.desc
	cb := f.cb
	f.transport.EventList.Schedule(eventlist.HandlerFunc(func(now sim.Time) {
		cb(desc)
	}), completeAt)
}
