package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npcpath/npcpath/internal/waypoint"
	"github.com/spf13/cobra"
)

// ValidationResult represents the validation outcome for a single path file.
type ValidationResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	Waypoints int      `json:"waypoints"`
	Errors    []string `json:"errors"`
}

var validateFormatFlag string

var validateCmd = &cobra.Command{
	Use:   "validate [file.path]...",
	Short: "Check path files for corruption",
	Long: `Validate decodes one or more .path files without registering them.

With no arguments every .path file in the paths directory is checked.

A file is valid when it decodes completely (no truncated record, every world
name is UTF-8), holds at least one waypoint, and every waypoint has a world
and finite coordinates.

Exit code 0 if all files are valid, 1 if any file has errors.

Formats:
  text   Human-readable output to stderr (default)
  json   Structured JSON to stdout

Examples:
  npcpath validate
  npcpath validate paths/patrol.path paths/gate.path
  npcpath validate --format json`,
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addValidateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func addValidateFlags(c *cobra.Command) {
	c.Flags().StringVar(&validateFormatFlag, "format", "text", "Output format: text, json")
}

// runValidate validates each file independently and reports all results
// before failing.
func runValidate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(validateFormatFlag)
	switch format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: valid values are text, json", validateFormatFlag)
	}

	files := args
	if len(files) == 0 {
		env, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		names, err := env.store.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			files = append(files, env.store.FilePath(name))
		}
		if len(files) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "no path files in %s\n", env.store.Dir)
			return nil
		}
	}

	var results []ValidationResult
	invalid := 0
	for _, path := range files {
		result := validateFile(path)
		results = append(results, result)
		if !result.Valid {
			invalid++
		}
	}

	switch format {
	case "text":
		formatValidateText(cmd.ErrOrStderr(), results)
	case "json":
		if err := formatValidateJSON(cmd.OutOrStdout(), results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d path files invalid", invalid, len(results))
	}
	return nil
}

// validateFile decodes a single path file and checks every waypoint.
func validateFile(path string) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationResult{
			File:   path,
			Valid:  false,
			Errors: []string{fmt.Sprintf("failed to read path file: %v", err)},
		}
	}

	t, err := waypoint.Decode(data)
	if err != nil {
		return ValidationResult{
			File:   path,
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}

	var errs []string
	if len(t) == 0 {
		errs = append(errs, "path contains no waypoints")
	}
	for i, w := range t {
		if err := w.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("waypoint %d: %v", i+1, err))
		}
	}

	if len(errs) > 0 {
		return ValidationResult{
			File:      path,
			Valid:     false,
			Waypoints: len(t),
			Errors:    errs,
		}
	}

	return ValidationResult{
		File:      path,
		Valid:     true,
		Waypoints: len(t),
		Errors:    []string{},
	}
}

// formatValidateText writes human-readable validation results.
func formatValidateText(w io.Writer, results []ValidationResult) {
	color := resolveColor()
	validCount := 0
	for _, r := range results {
		if r.Valid {
			validCount++
			fmt.Fprintf(w, "%s %s: valid (%d waypoints)\n", green("✓", color), r.File, r.Waypoints)
		} else {
			fmt.Fprintf(w, "%s %s:\n", red("✗", color), r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "\nResult: %d/%d files valid\n", validCount, len(results))
	}
}

// formatValidateJSON writes JSON-encoded validation results.
func formatValidateJSON(w io.Writer, results []ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
