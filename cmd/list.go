package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/spf13/cobra"
)

// PathSummary is one registered path as reported by list.
type PathSummary struct {
	Name      string `json:"name"`
	Waypoints int    `json:"waypoints"`
}

// ListResult is the JSON document printed by list --format json.
type ListResult struct {
	Paths    []PathSummary `json:"paths"`
	Failures []FailedPath  `json:"failures"`
}

// FailedPath is a path file that could not be loaded.
type FailedPath struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

var listFormatFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the paths in the paths directory",
	Long: `List loads every .path file the way the server does at startup and
prints each registered path with its waypoint count. Files that cannot be
decoded are reported and skipped.

Formats:
  text   Human-readable output (default)
  json   Structured JSON to stdout`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addListFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringVar(&listFormatFlag, "format", "text", "Output format: text, json")
}

func runList(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(listFormatFlag)
	switch format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: valid values are text, json", listFormatFlag)
	}

	env, err := setup(cmd, nil)
	if err != nil {
		return err
	}

	reg := registry.New()
	res, err := pathstore.NewLoader(env.store, reg, pathstore.WithLogger(env.logger)).LoadAll()
	if err != nil {
		return err
	}

	result := ListResult{Paths: []PathSummary{}, Failures: []FailedPath{}}
	counts := reg.Snapshot()
	for _, name := range reg.Names() {
		result.Paths = append(result.Paths, PathSummary{Name: name, Waypoints: counts[name]})
	}
	for _, f := range res.Failures {
		result.Failures = append(result.Failures, FailedPath{File: f.File, Error: f.Err.Error()})
	}

	if format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if len(result.Paths) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "no paths in %s\n", env.store.Dir)
	}
	for _, p := range result.Paths {
		fmt.Fprintf(out, "%-32s %d waypoints\n", p.Name, p.Waypoints)
	}

	color := resolveColor()
	for _, f := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", yellow("!", color), f.File, f.Error)
	}
	return nil
}
