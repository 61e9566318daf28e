// Package commands implements the dittosync CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configcmd "github.com/marmos91/dittosync/cmd/dittosync/commands/config"
	"github.com/marmos91/dittosync/internal/cli/output"
	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/telemetry"
	"github.com/marmos91/dittosync/pkg/config"
	"github.com/marmos91/dittosync/pkg/metrics"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// flags holds the global flag values.
var flags struct {
	configPath string
	output     string
	noColor    bool
	verbose    bool
	numericIDs bool
	noUID      bool
	noGID      bool
}

// app is the state built by the root PersistentPreRunE and shared by the
// subcommands.
var app struct {
	cfg             *config.Config
	shutdownTracing func(context.Context) error
}

var rootCmd = &cobra.Command{
	Use:   "dittosync",
	Short: "Translate file ownership between replication peers",
	Long: `dittosync carries file ownership across hosts by name rather than by
number.

The sending side scans a tree and writes a catalog of the uids and gids it
saw, each with its local account or group name. The receiving side reads the
catalog, looks every name up in its own account database, and rewrites the
ownership of the file manifest so that a file owned by "alice" stays owned
by "alice" whatever her uid is on either host.

Both sides must agree on which tables are exchanged (mapping.preserve_uid,
mapping.preserve_gid, mapping.numeric_ids): the catalog does not record it.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default: $XDG_CONFIG_HOME/dittosync/config.yaml)")
	pf.StringVarP(&flags.output, "output", "o", "table", "Output format (table|json|yaml)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level, including every resolved mapping")
	pf.BoolVar(&flags.numericIDs, "numeric-ids", false, "Do not translate ids through names")
	pf.BoolVar(&flags.noUID, "no-preserve-uid", false, "Do not exchange or apply the user table")
	pf.BoolVar(&flags.noGID, "no-preserve-gid", false, "Do not exchange or apply the group table")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configcmd.Cmd)
}

// setup loads configuration, applies flag overrides, and initializes
// logging, tracing, and metrics.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	if flags.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	if flags.numericIDs {
		cfg.Mapping.NumericIDs = true
	}
	if flags.noUID {
		no := false
		cfg.Mapping.PreserveUID = &no
	}
	if flags.noGID {
		no := false
		cfg.Mapping.PreserveGID = &no
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg.TracerConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	app.cfg = cfg
	app.shutdownTracing = shutdown
	logger.Debug("Configuration loaded",
		"numeric_ids", cfg.Mapping.NumericIDs,
		"preserve_uid", *cfg.Mapping.PreserveUID,
		"preserve_gid", *cfg.Mapping.PreserveGID,
		"identity_source", cfg.Identity.Source)
	return nil
}

func teardown(ctx context.Context) error {
	if app.cfg != nil && app.cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(app.cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics", logger.KeyError, err)
		}
	}
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			logger.Warn("Failed to flush traces", logger.KeyError, err)
		}
	}
	return nil
}

// newPrinter returns a Printer for the --output flag writing to the
// command's output.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(flags.output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format, !flags.noColor), nil
}
