package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/cravings/internal/recommend"
	"github.com/spf13/cobra"
)

func LocationsCmd() *cobra.Command {
	return optionsCmd("locations", "List known localities", (*recommend.Client).Locations)
}

func CuisinesCmd() *cobra.Command {
	return optionsCmd("cuisines", "List known cuisines", (*recommend.Client).Cuisines)
}

func optionsCmd(name, short string, fetch func(*recommend.Client, context.Context) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRecommendClient(cmd)
			if err != nil {
				return err
			}

			values, err := fetch(client, cmd.Context())
			if err != nil {
				commandLogger(cmd).WithError(err).Debugf("failed to fetch %s", name)
				return fmt.Errorf("failed to fetch %s: %w", name, err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(map[string][]string{name: values}, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}

			if len(values) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s available.\n", name)
				return nil
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
