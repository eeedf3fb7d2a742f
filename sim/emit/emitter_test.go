package emit

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogEmitterTextMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, false)

	e.Emit(Event{RunID: "r1", Step: 3, Time: 100, TaskID: "t1", Msg: "finished"})

	require.Contains(t, buf.String(), "r1")
	require.Contains(t, buf.String(), "t1")
	require.Contains(t, buf.String(), "finished")
}

func TestLogEmitterJSONMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, true)

	e.Emit(Event{RunID: "r1", TaskID: "t1", Msg: "finished"})

	require.Contains(t, buf.String(), `"TaskID":"t1"`)
}

func TestNullEmitterDiscardsEverything(t *testing.T) {
	n := NullEmitter{}
	n.Emit(Event{Msg: "anything"})
	require.NoError(t, n.EmitBatch(context.Background(), []Event{{Msg: "x"}}))
	require.NoError(t, n.Flush(context.Background()))
}

func TestMultiEmitterFansOutToAllChildren(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiEmitter(NewLogEmitter(&a, false), NewLogEmitter(&b, false))

	m.Emit(Event{TaskID: "t1", Msg: "go"})

	require.Contains(t, a.String(), "t1")
	require.Contains(t, b.String(), "t1")
}
