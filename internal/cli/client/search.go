package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/service"
	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var location, cuisine string
	maxPrice := newNumberFlag(domain.FormatPrice(domain.DefaultMaxPrice), 0, math.Inf(1))
	minRating := newNumberFlag(domain.FormatRating(domain.DefaultMinRating), 0, 5)

	cmd := &cobra.Command{
		Use:   "search [prompt...]",
		Short: "Ask for restaurant recommendations",
		Long: `Sends the prompt and filters to the recommendation service and prints
up to six suggestions. Location and cuisine may be refined from the prompt.`,
		Example: `  cravings search spicy thai in koramangala
  cravings search --cuisine Italian --max-price 2000 --min-rating 4.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			sel := domain.Selections{
				Location:  strings.TrimSpace(location),
				Cuisine:   strings.TrimSpace(cuisine),
				MaxPrice:  maxPrice.String(),
				MinRating: minRating.String(),
			}
			return runSearch(cmd, strings.Join(args, " "), sel, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "Locality to search in")
	cmd.Flags().StringVarP(&cuisine, "cuisine", "c", "", "Cuisine to search for")
	cmd.Flags().Var(maxPrice, "max-price", "Maximum cost for two")
	cmd.Flags().Var(minRating, "min-rating", "Minimum rating (0-5)")

	return cmd
}

func runSearch(cmd *cobra.Command, prompt string, sel domain.Selections, outputJSON bool) error {
	if err := sel.ValidateNumeric(); err != nil {
		return err
	}

	client, err := newRecommendClient(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ctrl := service.NewSearchController(client, commandLogger(cmd))
	ctrl.LoadFilterOptions(ctx)
	_, searchErr := ctrl.Search(ctx, prompt, sel)
	state := ctrl.State()

	if outputJSON {
		output, _ := json.MarshalIndent(state, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
	} else {
		printState(cmd.OutOrStdout(), state)
	}

	if searchErr != nil {
		if state.Alert != nil && !outputJSON {
			fmt.Fprintln(cmd.ErrOrStderr(), state.Alert.Message)
		}
		return fmt.Errorf("search failed: %w", searchErr)
	}
	return nil
}

func printState(w io.Writer, state domain.State) {
	sel := state.Selections
	fmt.Fprintf(w, "Filters: location=%s cuisine=%s max price ₹%s rating %s+\n\n",
		orAny(sel.Location), orAny(sel.Cuisine), sel.MaxPrice, sel.MinRating)

	if state.Result.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", state.Result.Summary)
	}

	if len(state.Result.Suggestions) == 0 {
		if state.Alert == nil {
			fmt.Fprintln(w, "No matches. Try loosening the filters.")
		}
		return
	}

	fmt.Fprintln(w, "Here you go. Problem solved.")
	fmt.Fprintln(w)
	for i, s := range state.Result.Suggestions {
		fmt.Fprintf(w, "%d. %s  ★ %s\n", i+1, s.Name, domain.FormatRating(s.Rating))
		if s.Cuisines != "" {
			fmt.Fprintf(w, "   %s\n", s.Cuisines)
		}
		if s.CostForTwo != "" {
			fmt.Fprintf(w, "   Avg. ₹%s for two\n", s.CostForTwo)
		}
		if s.Address != "" {
			fmt.Fprintf(w, "   %s\n", s.Address)
		}
		if s.AIReason != "" {
			fmt.Fprintf(w, "   Why you'll like it: %s\n", s.AIReason)
		}
		if i < len(state.Result.Suggestions)-1 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
	}
}

func orAny(v string) string {
	if v == "" {
		return "any"
	}
	return v
}

// IsSearchFailure reports whether err came from the recommendation service
// rather than from bad input.
func IsSearchFailure(err error) bool {
	return errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrMalformedResponse)
}
