package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ssiserve/internal/config"
	"ssiserve/internal/paths"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect ssiserve configuration",
	Long:  "View the effective configuration from .ssiserve/config.*, the user config dir and SSISERVE_* variables",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long: `Display the configuration after defaults, config file and environment
overrides have been merged.

Examples:
  ssiserve config show                # JSON
  ssiserve config show --format toml
  ssiserve config show --format yaml`,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported SSISERVE_* environment variable overrides",
	Run:   runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "json", "Output format (json, toml, yaml)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}
	result, err := config.LoadConfigWithDetails(workDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	if result.UsedDefaults {
		fmt.Fprintln(errOut, "# source: defaults (no config file found)")
	} else {
		fmt.Fprintf(errOut, "# source: %s\n", result.ConfigPath)
	}
	for _, ov := range result.EnvOverrides {
		fmt.Fprintf(errOut, "# override: %s=%s -> %s\n", ov.EnvVar, ov.FromValue, ov.Path)
	}

	return result.Config.Encode(cmd.OutOrStdout(), configFormat)
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tCONFIG PATH\tCURRENT")
	for _, name := range config.GetSupportedEnvVars() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, config.EnvVarPath(name), valueOrDash(os.Getenv(name)))
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\n", config.ConfigPathEnvVar, "(config file)", valueOrDash(os.Getenv(config.ConfigPathEnvVar)))
	fmt.Fprintf(tw, "%s\t%s\t%s\n", paths.HomeEnvVar, "(user config dir)", valueOrDash(os.Getenv(paths.HomeEnvVar)))
	tw.Flush()
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
