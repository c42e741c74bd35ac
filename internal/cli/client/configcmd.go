package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ConfigCmd manages the per-user config file.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the CLI configuration",
	}

	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configResetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved backend settings and where they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ResolveBackend(cmd)
			if err != nil {
				return err
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(settings, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "backend_url: %s (%s)\n", settings.URL, settings.Source)
			fmt.Fprintf(cmd.OutOrStdout(), "timeout:     %s\n", settings.Timeout)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	var backendURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save backend settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if config == nil {
				config = &GlobalConfig{}
			}

			if cmd.Flags().Changed("backend-url") {
				if err := validateBackendURL(backendURL); err != nil {
					return err
				}
				config.BackendURL = backendURL
			}
			if cmd.Flags().Changed("backend-timeout") {
				if timeout <= 0 {
					return fmt.Errorf("backend-timeout must be positive")
				}
				config.Timeout = Duration(timeout)
			}

			if err := SaveGlobalConfig(config); err != nil {
				return err
			}

			path, _ := GetConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend-url", "", "Recommendation service base URL")
	cmd.Flags().DurationVar(&timeout, "backend-timeout", 0, "Request timeout for the recommendation service")
	return cmd
}

func configResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration removed.")
			return nil
		},
	}
}
