// Package cmd implements the npcpath Cobra command tree.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/npcpath/npcpath/internal/config"
	"github.com/npcpath/npcpath/internal/logging"
	"github.com/npcpath/npcpath/internal/pathstore"
	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configFlag    string
	pathsDirFlag  string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "npcpath",
	Short: "Record, store and serve NPC movement paths",
	Long: `npcpath - Record, store and serve NPC movement paths

Sample a moving actor's pose on a fixed tick, save the debounced trajectory
as a named .path file and make it available to anything that replays paths.

Configuration is read from defaults, an optional YAML file (--config),
NPCPATH_* environment variables and flags, later sources winning.

Examples:
  # Record the "steve" actor from a pose script as the path "patrol"
  npcpath record --script poses.yaml --actor steve --name patrol

  # List and inspect stored paths
  npcpath list
  npcpath show patrol --format yaml

  # Check every stored path file
  npcpath validate

  # Serve paths and metrics over HTTP, reloading files as they change
  npcpath serve --addr :8089`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("npcpath version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(c *cobra.Command) {
	c.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a YAML config file")
	c.PersistentFlags().StringVar(&pathsDirFlag, "paths-dir", "", "Directory holding .path files (default \"paths\")")
	c.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	c.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: text, json")
}

// runtimeEnv is what every command needs once configuration is resolved.
type runtimeEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *pathstore.Store
}

// setup resolves configuration for c, letting explicitly set flags and the
// command's own overrides win over file and environment values.
func setup(c *cobra.Command, overrides map[string]any) (*runtimeEnv, error) {
	all := map[string]any{}
	if c.Flags().Changed("paths-dir") {
		all["paths.dir"] = pathsDirFlag
	}
	if c.Flags().Changed("log-level") {
		all["log.level"] = logLevelFlag
	}
	if c.Flags().Changed("log-format") {
		all["log.format"] = logFormatFlag
	}
	for k, v := range overrides {
		all[k] = v
	}

	cfg, err := config.Load(configFlag, all)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	logCfg.Output = c.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	return &runtimeEnv{
		cfg:    cfg,
		logger: logger,
		store:  pathstore.New(cfg.Paths.Dir),
	}, nil
}
