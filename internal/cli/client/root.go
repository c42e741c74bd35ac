// Package client implements the cravings command line client.
package client

import (
	"github.com/cloo-solutions/cravings/internal/cli"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCmd builds the cravings command tree.
func RootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cravings",
		Short: "cravings CLI - restaurant recommendations from a prompt",
		Long: `cravings asks the recommendation service for places to eat.

Environment variables:
  CRAVINGS_BACKEND_URL       Recommendation service URL (default: http://127.0.0.1:8000)
  CRAVINGS_BACKEND_TIMEOUT   Request timeout (default: 60s)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "Recommendation service URL (overrides env and config)")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "Request timeout (overrides env and config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests to stderr")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(SearchCmd())
	rootCmd.AddCommand(LocationsCmd())
	rootCmd.AddCommand(CuisinesCmd())
	rootCmd.AddCommand(ConfigCmd())

	return rootCmd
}

func commandLogger(cmd *cobra.Command) logrus.FieldLogger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return logging.New("debug", "text", cmd.ErrOrStderr())
	}
	return logging.Discard()
}
