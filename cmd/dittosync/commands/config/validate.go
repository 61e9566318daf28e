package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittosync/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dittosync configuration file.

Checks for syntax errors and invalid values, then prints the settings both
peers must agree on.

Examples:
  # Validate default config
  dittosync config validate

  # Validate specific config file
  dittosync config validate --config /etc/dittosync/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Mapping.NumericIDs {
		warnings = append(warnings, "numeric_ids is set: no names are exchanged, preserve_* only controls chown")
	}
	if cfg.Identity.Source == "static" && cfg.Mapping.Superuser == config.SuperuserAuto {
		warnings = append(warnings, "superuser is 'auto' with a static identity source: the static superuser flag decides")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file: %s\n", path)
	fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	fmt.Fprintf(out, "\nExchange settings (must match the peer):\n")
	fmt.Fprintf(out, "  Preserve uid:  %t\n", *cfg.Mapping.PreserveUID)
	fmt.Fprintf(out, "  Preserve gid:  %t\n", *cfg.Mapping.PreserveGID)
	fmt.Fprintf(out, "  Numeric ids:   %t\n", cfg.Mapping.NumericIDs)
	fmt.Fprintf(out, "  Byte order:    %s\n", cfg.Mapping.ByteOrder)
	fmt.Fprintf(out, "\nIdentity source: %s (cache %s)\n", cfg.Identity.Source, cfg.Identity.CacheTTL)

	return nil
}
