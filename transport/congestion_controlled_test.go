package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikang/ffsim-core/eventlist"
	"github.com/dikang/ffsim-core/sim"
)

func TestFlowCompletesAfterBandwidthDelayPlusHopLatency(t *testing.T) {
	el := eventlist.New()
	// 8 bits/byte, bandwidth chosen so a 1000-byte flow takes exactly 1000ps.
	tr := NewCongestionControlled(el, 8_000_000_000_000, 10)

	var completedAt sim.Time
	desc := &sim.FlowDescriptor{}
	source := tr.NewFlowSource(0, 1, func(d *sim.FlowDescriptor) {
		completedAt = el.Now()
	}, desc)

	source.SetFlowSize(1000)
	route := sim.Route{"q", "p"}
	source.Connect(route, route, 0)

	el.Run()

	// 1 hop (queue+pipe pair) -> 1*10ps latency, plus 1000ps transfer.
	require.Equal(t, sim.Time(1010), completedAt)
}

func TestCallbackReceivesTheSameDescriptor(t *testing.T) {
	el := eventlist.New()
	tr := NewCongestionControlled(el, 1_000_000_000_000, 0)

	desc := &sim.FlowDescriptor{SrcIndex: 7}
	var got *sim.FlowDescriptor
	source := tr.NewFlowSource(0, 1, func(d *sim.FlowDescriptor) { got = d }, desc)
	source.SetFlowSize(0)
	source.Connect(nil, nil, 5)

	el.Run()

	require.Same(t, desc, got)
	require.Equal(t, 7, got.SrcIndex)
}
