package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by ldflags)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "torchtrack",
	Short: "Game client log watcher for inventory and run tracking",
	Long: `torchtrack watches the game client's appended log file, extracts
structured events (inventory changes, zone transitions, UI views, player
identity) and folds them into running session state: play time, map-run
segments, and item quantity deltas for pricing.

Positions are persisted per file, so restarting resumes exactly where the
previous run stopped.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(offsetsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("torchtrack %s (commit: %s)\n", version, commit)
	},
}
