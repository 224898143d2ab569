package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "東証 日次株価スクリーナー",
	Long: `TSE daily screener

Fetches end-of-day quotes for every Prime, Standard and Growth issue,
derives per-issue and per-sector metrics and writes one CSV per day.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener run
  go run ./cmd/screener run --markets Prime,Growth --no-skip-weekend
  go run ./cmd/screener view --preset 4 --top 50
  go run ./cmd/screener serve
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (console|json)")
}
