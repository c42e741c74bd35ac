package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/cravings/internal/cli"
	"github.com/cloo-solutions/cravings/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := client.RootCmd(version)

	if handled, err := cli.CheckHelpJSON(rootCmd, os.Args[1:], os.Stdout); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// 2 separates service failures from usage errors for scripts.
		if client.IsSearchFailure(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
