package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/npcpath/npcpath/internal/waypoint"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// PathDocument is a decoded path as printed by show.
type PathDocument struct {
	Name      string              `json:"name" yaml:"name"`
	Waypoints waypoint.Trajectory `json:"waypoints" yaml:"waypoints"`
}

var showFormatFlag string

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the waypoints of a stored path",
	Long: `Show decodes <paths-dir>/<name>.path and prints its waypoints in
playback order.

Formats:
  text   One waypoint per line (default)
  yaml   YAML document, same shape as a pose script entry
  json   JSON document`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addShowFlags(showCmd)
	rootCmd.AddCommand(showCmd)
}

func addShowFlags(c *cobra.Command) {
	c.Flags().StringVar(&showFormatFlag, "format", "text", "Output format: text, yaml, json")
}

func runShow(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(showFormatFlag)
	switch format {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("invalid format %q: valid values are text, yaml, json", showFormatFlag)
	}

	env, err := setup(cmd, nil)
	if err != nil {
		return err
	}

	name := args[0]
	t, err := pathstore.NewLoader(env.store, registry.New(), pathstore.WithLogger(env.logger)).Load(name)
	if err != nil {
		return fmt.Errorf("failed to load path %q: %w", name, err)
	}

	doc := PathDocument{Name: name, Waypoints: t}
	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML output: %w", err)
		}
		return enc.Close()
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	default:
		formatShowText(out, doc)
		return nil
	}
}

func formatShowText(w io.Writer, doc PathDocument) {
	fmt.Fprintf(w, "%s (%d waypoints)\n", doc.Name, len(doc.Waypoints))
	for i, p := range doc.Waypoints {
		fmt.Fprintf(w, "%4d  %s  x=%g y=%g z=%g yaw=%g pitch=%g\n",
			i+1, p.World, p.X, p.Y, p.Z, p.Yaw, p.Pitch)
	}
}
