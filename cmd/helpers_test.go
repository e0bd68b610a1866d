package cmd

import (
	"bytes"
	"testing"

	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/npcpath/npcpath/internal/waypoint"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// makeRoot creates a fresh root with the persistent flags and the given
// subcommand. Flag variables are rebound to their defaults.
func makeRoot(sub *cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:           "npcpath",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addPersistentFlags(root)
	root.AddCommand(sub)
	return root
}

// execute runs root with args and returns captured stdout and stderr.
func execute(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NPCPATH_COLOR", "0")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePath(t *testing.T, dir, name string, traj waypoint.Trajectory) {
	t.Helper()
	data, err := waypoint.Encode(traj)
	require.NoError(t, err)
	require.NoError(t, pathstore.New(dir).Write(name, data))
}

func samplePath() waypoint.Trajectory {
	return waypoint.Trajectory{
		{World: "world", X: 0, Y: 64, Z: 0},
		{World: "world", X: 5, Y: 70, Z: 5, Yaw: 90, Pitch: 10},
	}
}
