package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikang/ffsim-core/sim"
)

const sampleYAML = `
devices:
  - id: d0
    kind: GPU
tasks:
  - id: A
    kind: FORWARD
    device: d0
    run_time_seconds: 0.00000001
    successors: [B]
  - id: B
    kind: FORWARD
    device: d0
    run_time_seconds: 0.00000002
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAndBuildOrdinaryTasks(t *testing.T) {
	path := writeTemp(t, sampleYAML)

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Devices, 1)
	require.Len(t, f.Tasks, 2)

	app, err := Build("run-1", f, nil, nil)
	require.NoError(t, err)
	require.Len(t, app.Tasks, 2)
	require.Contains(t, app.Tasks, "A")
	require.Contains(t, app.Tasks, "B")
}

func TestBuildRejectsUnknownDeviceKind(t *testing.T) {
	path := writeTemp(t, `
devices:
  - id: d0
    kind: QUANTUM
tasks: []
`)
	f, err := Load(path)
	require.NoError(t, err)

	_, err = Build("run-1", f, nil, nil)
	require.Error(t, err)
	var cfgErr *sim.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildRejectsUnresolvedSuccessor(t *testing.T) {
	path := writeTemp(t, `
devices:
  - id: d0
    kind: GPU
tasks:
  - id: A
    kind: FORWARD
    device: d0
    successors: [missing]
`)
	f, err := Load(path)
	require.NoError(t, err)

	_, err = Build("run-1", f, nil, nil)
	require.Error(t, err)
}

func TestBuildSelectsRingByDefaultForAllReduceWithoutRings(t *testing.T) {
	path := writeTemp(t, `
devices: []
tasks:
  - id: AR
    kind: ALLREDUCE
    nodes: [0, 1, 2, 3]
    transfer_bytes: 1048576
`)
	f, err := Load(path)
	require.NoError(t, err)

	app, err := Build("run-1", f, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Tasks["AR"].Ring)
}

func TestBuildSelectsMultiRingWhenRingsPresent(t *testing.T) {
	path := writeTemp(t, `
devices: []
tasks:
  - id: AR
    kind: ALLREDUCE
    nodes: [0, 1, 2, 3]
    rings:
      - [1, 1, 1]
      - [2, 2, 2]
    transfer_bytes: 1048576
`)
	f, err := Load(path)
	require.NoError(t, err)

	app, err := Build("run-1", f, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Tasks["AR"].MultiRing)
}
