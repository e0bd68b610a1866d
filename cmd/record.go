package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npcpath/npcpath/internal/actor"
	"github.com/npcpath/npcpath/internal/recorder"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/spf13/cobra"
)

var (
	recordActor  string
	recordName   string
	recordScript string
	recordMax    int
	recordTick   time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record --script <poses.yaml> --actor <id> --name <path>",
	Short: "Record an actor's movement as a named path",
	Long: `Record samples an actor's pose once per tick and saves the movement as
<paths-dir>/<name>.path, overwriting any path with the same name.

Poses come from a YAML pose script. Each tick reads the actor's next pose;
samples within 0.01 blocks (Manhattan distance) of the previous waypoint are
dropped. Recording ends when the actor's script runs out, the waypoint limit
is reached, or on Ctrl-C. A recording that captured nothing writes no file.

Pose script format:
  actors:
    - id: steve
      poses:
        - {world: world, x: 0, y: 64, z: 0, yaw: 0, pitch: 0}
        - {world: world, x: 5, y: 70, z: 5, yaw: 90, pitch: 10}

Examples:
  npcpath record --script poses.yaml --actor steve --name patrol
  npcpath record --script poses.yaml --actor steve --name gate --max 200 --tick 100ms`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addRecordFlags(recordCmd)
	rootCmd.AddCommand(recordCmd)
}

func addRecordFlags(c *cobra.Command) {
	c.Flags().StringVarP(&recordActor, "actor", "a", "", "actor ID to record (required)")
	c.Flags().StringVarP(&recordName, "name", "n", "", "path name (required)")
	c.Flags().StringVarP(&recordScript, "script", "s", "", "YAML pose script (required)")
	c.Flags().IntVar(&recordMax, "max", 0, "maximum waypoints (default from record.max_waypoints)")
	c.Flags().DurationVar(&recordTick, "tick", 0, "sampling interval (default from record.tick)")
	_ = c.MarkFlagRequired("actor")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("script")
}

func runRecord(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("max") {
		overrides["record.max_waypoints"] = recordMax
	}
	if cmd.Flags().Changed("tick") {
		overrides["record.tick"] = recordTick.String()
	}
	env, err := setup(cmd, overrides)
	if err != nil {
		return err
	}

	script, err := actor.LoadScriptFile(recordScript)
	if err != nil {
		return err
	}
	if err := env.store.EnsureDir(); err != nil {
		return err
	}

	rec := recorder.New(actor.NewScriptTracker(script), env.store, registry.New(),
		recorder.WithTick(env.cfg.Record.Tick),
		recorder.WithLogger(env.logger),
	)
	session, err := rec.Start(recordActor, recordName, env.cfg.Record.MaxWaypoints)
	if err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-session.Done():
	case <-ctx.Done():
		session.Cancel()
		<-session.Done()
	}

	color := resolveColor()
	out := cmd.ErrOrStderr()
	if err := session.Err(); err != nil {
		fmt.Fprintf(out, "%s %s: recording failed after %s\n", red("✗", color), recordName, session.StopReason())
		if errors.Is(err, recorder.ErrEmptyCapture) {
			return fmt.Errorf("nothing recorded for %q: %w", recordName, err)
		}
		return fmt.Errorf("failed to save path %q: %w", recordName, err)
	}

	fmt.Fprintf(out, "%s %s: %d waypoints recorded (%s) -> %s\n",
		green("✓", color), recordName, session.Len(), session.StopReason(), env.store.FilePath(recordName))
	return nil
}
