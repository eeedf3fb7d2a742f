package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikang/ffsim-core/sim"
)

func TestFlatProvidesOnePathPerPair(t *testing.T) {
	f := NewFlat(4)

	paths := f.Paths(0, 1)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 2)

	require.NotNil(t, f.Queue(0, 1))
	require.NotNil(t, f.Pipe(0, 1))
	require.Equal(t, 4, f.NumNodes())
}

func TestFlatHasNoSelfLinks(t *testing.T) {
	f := NewFlat(3)
	require.Nil(t, f.Queue(1, 1))
	require.Empty(t, f.Paths(2, 2))
}

func TestAddPathAppendsAnAlternateRoute(t *testing.T) {
	f := NewFlat(4)
	f.AddPath(0, 1, sim.Path{"alternate-queue", "alternate-pipe"})

	require.Len(t, f.Paths(0, 1), 2)
}
