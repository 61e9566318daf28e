package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittosync/internal/cli/output"
	"github.com/marmos91/dittosync/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults and DITTOSYNC_* environment
variables are applied. Table output falls back to YAML.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	flag, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(flag)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
