package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scandash",
	Short: "Security scan results dashboard",
	Long: `scandash - Security scan results dashboard

Browse, inspect and delete security scan records, follow simulated scans
as they progress and serve the dashboard data over HTTP.

NOTE: scans started from scandash are simulated. No traffic is sent to the
target and no findings are produced.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Configuration
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./config.yaml, then ~/.scandash/config.yaml)")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to a rotated file instead of stderr")

	// Registry flags
	rootCmd.PersistentFlags().String("backend", "memory", "Registry backend (memory, sqlite)")
	rootCmd.PersistentFlags().Bool("no-seed", false, "Start with an empty registry")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scandash %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
