package eventlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrdersByTimeThenSequence(t *testing.T) {
	l := New()
	var order []string

	l.Schedule(HandlerFunc(func(now Time) { order = append(order, "b@10") }), 10)
	l.Schedule(HandlerFunc(func(now Time) { order = append(order, "a@10") }), 10)
	l.Schedule(HandlerFunc(func(now Time) { order = append(order, "@5") }), 5)

	l.Run()

	require.Equal(t, []string{"@5", "b@10", "a@10"}, order)
}

func TestNowTracksLastDispatchedEvent(t *testing.T) {
	l := New()
	var observed Time
	l.Schedule(HandlerFunc(func(now Time) { observed = now }), 42)
	l.Run()
	require.Equal(t, Time(42), observed)
	require.Equal(t, Time(42), l.Now())
}

func TestHandlerCanScheduleFutureEvents(t *testing.T) {
	l := New()
	var fired []Time
	var second HandlerFunc = func(now Time) { fired = append(fired, now) }
	l.Schedule(HandlerFunc(func(now Time) {
		fired = append(fired, now)
		l.Schedule(second, now+5)
	}), 1)

	l.Run()

	require.Equal(t, []Time{1, 6}, fired)
}

func TestSetEndTimeStopsBeforeLaterEvents(t *testing.T) {
	l := New()
	var fired []Time
	l.Schedule(HandlerFunc(func(now Time) { fired = append(fired, now) }), 5)
	l.Schedule(HandlerFunc(func(now Time) { fired = append(fired, now) }), 15)
	l.SetEndTime(10)

	l.Run()

	require.Equal(t, []Time{5}, fired)
	require.Equal(t, 1, l.Len())
}

func TestEmptyListRunsWithoutBlocking(t *testing.T) {
	l := New()
	l.Run()
	require.Equal(t, 0, l.Len())
}
