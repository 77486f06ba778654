// Docon controls the two digital outputs (DO1, DO2) of a Modbus/TCP I/O box.
//
// Each DO is mapped to a coil on the device and may be inverted. Mapping,
// polarity and the device address are kept in a settings file and survive
// restarts. Every device operation reconnects and retries on link faults.
//
// Usage:
//
//	docon [command] [flags]
//
// Running without arguments opens the interactive console.
// See 'docon --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/docon/internal/logging"
	"github.com/muurk/docon/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath   string
	logLevel     string
	timeout      string
	maxAttempts  int
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docon",
	Short: "Modbus/TCP DO control console",
	Long: `Switch, pulse and inspect the two digital outputs of a Modbus/TCP I/O box.

DO1 and DO2 are mapped to device coils and may be inverted. The mapping,
polarity and device address are stored in the settings file and can be
changed from the console or with the map, inv and cfg commands.

If no command is specified, the interactive console starts.`,
	Version: version.Version,
	Example: `  # Interactive console
  docon

  # One-shot commands
  docon on 1
  docon pulse 2 500
  docon status --format json

  # Point at another device and save it
  docon cfg 192.168.1.20 502 1`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless --log-level or DOCON_LOG_LEVEL is set
		return logging.Initialize(logLevel)
	},
	RunE: runConsole,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: OS config dir/docon/config.yaml; .json and .toml also supported)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); debug also logs Modbus frames")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "3s", "Modbus response timeout (e.g. 500ms, 3s)")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "attempts", 3, "Attempts per device operation before giving up")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format for one-shot commands (text, json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docon %s\n", version.Full())
	},
}
