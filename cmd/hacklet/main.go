// Hacklet controls Pico brand smart power outlets through their USB
// dongle.
//
// It speaks the outlets' proprietary serial protocol: commissioning new
// devices onto the dongle's network, switching sockets on and off, and
// reading accumulated power samples.
//
// Usage:
//
//	hacklet [command] [flags]
//
// See 'hacklet --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacklet/hacklet/internal/logging"
	"github.com/hacklet/hacklet/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hacklet",
	Short: "Control Pico smart power outlets over their USB dongle",
	Long: `Command and monitor Pico brand smart power outlets through the
vendor's USB dongle.

Supports commissioning new outlets onto the dongle's network, switching
individual sockets on and off, and reading accumulated power samples.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgErr := applyConfigDefaults(cmd)
		if err := logging.Initialize(debugLevel); err != nil {
			return err
		}
		if cfgErr != nil {
			logging.Warn("ignoring config file", zap.Error(cfgErr))
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hacklet %s (commit: %s)\n", version.Version, version.Commit)
	},
}
