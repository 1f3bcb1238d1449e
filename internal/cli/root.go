// Package cli implements the fsguard command line. Each file operation is a
// subcommand running against the same sandboxed FileManager the MCP tools
// use.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"fsguard/internal/config"
	"fsguard/internal/filemanager"
	"fsguard/internal/logging"
	"fsguard/internal/mcp"
	"fsguard/internal/metrics"
	"fsguard/pkg/fileops"
)

// Version is set at build time with -ldflags "-X fsguard/internal/cli.Version=...".
var Version = "dev"

// app carries the state shared by every subcommand once setup has run.
type app struct {
	configPath  string
	allow       []string
	dumpMetrics bool

	logger  *logging.AppLogger
	metrics *metrics.Metrics
	fm      *filemanager.FileManager
	server  *mcp.Server
}

// Execute runs the fsguard root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the fsguard command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fsguard",
		Short: "Sandboxed filesystem access for tools and agents",
		Long: `fsguard performs file operations confined to a set of allowed directories.
Every path is resolved through the sandbox first, so traversal and symlink
escapes are rejected before any I/O happens. The same operations
are available as MCP tools through "fsguard call".`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.writeMetrics,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/fsguard/config.yaml)")
	rootCmd.PersistentFlags().StringArrayVar(&a.allow, "allow", nil, "allowed directory, repeatable; replaces the configured list")
	rootCmd.PersistentFlags().BoolVar(&a.dumpMetrics, "metrics", false, "print operation metrics to stderr on exit")

	rootCmd.AddCommand(
		newReadCmd(a),
		newReadManyCmd(a),
		newWriteCmd(a),
		newEditCmd(a),
		newMkdirCmd(a),
		newListCmd(a),
		newTreeCmd(a),
		newMoveCmd(a),
		newSearchCmd(a),
		newInfoCmd(a),
		newRootsCmd(a),
		newToolsCmd(a),
		newCallCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// setup loads configuration and builds the sandbox. It runs before every
// command that touches the filesystem.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	loadDotEnv()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("allow") {
		cfg.AllowedDirectories = a.allow
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w (run \"fsguard config init --allow DIR\" or pass --allow)", err)
	}

	guard, err := fileops.NewGuard(cfg.AllowedDirectories)
	if err != nil {
		return err
	}

	a.logger = logging.GetDefault()
	a.metrics = metrics.New()
	a.fm = filemanager.NewFileManager(guard, a.logger,
		filemanager.WithMaxDepth(cfg.MaxDepth),
		filemanager.WithMaxReadBytes(cfg.MaxReadBytes),
		filemanager.WithReadConcurrency(cfg.ReadConcurrency),
		filemanager.WithMetrics(a.metrics),
	)
	a.server = mcp.NewServer(a.fm, a.logger, Version)

	a.logger.DebugObject("config", *cfg)
	a.logger.Debug("Sandbox ready", "allowed", guard.AllowedDirectories())
	a.logger.LogPerformance("setup", start)
	return nil
}

// writeMetrics prints the collected metrics in the Prometheus text format
// when --metrics is set.
func (a *app) writeMetrics(cmd *cobra.Command, _ []string) error {
	if !a.dumpMetrics || a.metrics == nil {
		return nil
	}

	families, err := a.metrics.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}

// loadDotEnv reads a .env file from the working directory when one exists.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to read .env file", "error", err)
	}
}

// noSetup is used as PersistentPreRunE by commands that do not need a
// sandbox.
func noSetup(_ *cobra.Command, _ []string) error {
	loadDotEnv()
	return nil
}
