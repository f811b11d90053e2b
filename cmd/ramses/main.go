// Ramses is a client for RAMSES-II heating RF networks.
//
// It talks to a gateway daemon over WebSocket, decodes the frames the
// gateway relays from the RF network, and constructs well-formed commands
// for Honeywell/Resideo evohome-family controllers, zones and HVAC
// devices.
//
// Usage:
//
//	ramses [command] [flags]
//
// Running without arguments launches the live packet monitor.
// See 'ramses --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evohub/ramses/internal/logging"
	"github.com/evohub/ramses/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ramses",
	Short: "RAMSES-II gateway client",
	Long: `A client for RAMSES-II heating RF networks.

Decodes packets relayed by a gateway daemon, fetches controller state
such as the system fault log, and constructs commands for zones, hot
water and system modes.

If no command is specified, the live packet monitor will launch.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the monitor when no subcommand provided
		return runMonitor(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ramses %s (commit: %s)\n", version.Version, version.Commit)
	},
}
