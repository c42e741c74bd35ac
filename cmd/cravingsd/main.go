package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/cravings/internal/cli"
	"github.com/cloo-solutions/cravings/internal/cli/web"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cravingsd",
		Short: "cravings web front end",
		Long:  "cravingsd serves the restaurant recommendation page and its JSON state API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(web.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if handled, err := cli.CheckHelpJSON(rootCmd, os.Args[1:], os.Stdout); handled {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
