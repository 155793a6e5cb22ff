// tradeconsole - a terminal console for the trading platform backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradeconsole",
		Short: "Terminal console for the trading platform backend",
		Long: `tradeconsole talks to the trading platform backend over its REST API
and push channel, keeping a local synchronized snapshot of accounts,
positions, quotes, orders, trades, strategies and backtests.

Configuration is read from environment variables (or a .env file):
BACKEND_URL, WS_URL, TOKEN_PATH and friends.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(accountsCmd())
	rootCmd.AddCommand(positionsCmd())
	rootCmd.AddCommand(quotesCmd())
	rootCmd.AddCommand(ordersCmd())
	rootCmd.AddCommand(tradesCmd())
	rootCmd.AddCommand(strategiesCmd())
	rootCmd.AddCommand(backtestCmd())
	rootCmd.AddCommand(dataCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tradeconsole version %s\n", version)
		},
	}
}
