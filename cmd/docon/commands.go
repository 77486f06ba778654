package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/docon/internal/server"
)

func init() {
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(pulseCmd)
	rootCmd.AddCommand(invCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(cfgCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showcfgCmd)
}

// onCmd switches a DO on
var onCmd = &cobra.Command{
	Use:   "on <1|2>",
	Short: "Switch a DO on",
	Long: `Switch DO1 or DO2 on. The channel's polarity is applied, so an inverted
channel writes OFF to its coil. Coils 0-7 are read back afterwards.`,
	Example: `  docon on 1`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return switchChannel(cmd, args[0], true)
	},
}

// offCmd switches a DO off
var offCmd = &cobra.Command{
	Use:     "off <1|2>",
	Short:   "Switch a DO off",
	Example: `  docon off 2`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return switchChannel(cmd, args[0], false)
	},
}

func switchChannel(cmd *cobra.Command, arg string, on bool) error {
	channel, err := parseArg("channel", arg)
	if err != nil {
		return err
	}
	op, state := server.OpOff, "off"
	if on {
		op, state = server.OpOn, "on"
	}
	return runOp(cmd, server.Request{Op: op, Channel: channel},
		fmt.Sprintf("DO%d switched %s", channel, state))
}

// pulseCmd drives a DO on for a time, then off
var pulseCmd = &cobra.Command{
	Use:   "pulse <1|2> <ms>",
	Short: "Pulse a DO",
	Long: `Switch a DO on, hold it for <ms> milliseconds, then switch it off.

If the link fails during the pulse, the whole pulse is repeated on the next
attempt, so the output may see more than one on period.`,
	Example: `  # Half a second on DO2
  docon pulse 2 500`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := parseArg("channel", args[0])
		if err != nil {
			return err
		}
		ms, err := parseArg("ms", args[1])
		if err != nil {
			return err
		}
		return runOp(cmd, server.Request{Op: server.OpPulse, Channel: channel, DurationMs: ms},
			fmt.Sprintf("DO%d pulsed", channel))
	},
}

// invCmd toggles the polarity of a DO
var invCmd = &cobra.Command{
	Use:     "inv <1|2>",
	Short:   "Toggle the polarity of a DO and save it",
	Example: `  docon inv 1`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := parseArg("channel", args[0])
		if err != nil {
			return err
		}
		return runOp(cmd, server.Request{Op: server.OpInvert, Channel: channel},
			fmt.Sprintf("DO%d polarity toggled", channel))
	},
}

// mapCmd assigns a coil to a DO
var mapCmd = &cobra.Command{
	Use:     "map <1|2> <coil>",
	Short:   "Map a DO to a coil and save it",
	Example: `  docon map 1 0`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := parseArg("channel", args[0])
		if err != nil {
			return err
		}
		coil, err := parseArg("coil", args[1])
		if err != nil {
			return err
		}
		return runOp(cmd, server.Request{Op: server.OpMap, Channel: channel, Coil: &coil},
			fmt.Sprintf("DO%d mapped", channel))
	},
}

// cfgCmd updates the device address
var cfgCmd = &cobra.Command{
	Use:   "cfg <ip> [port] [uid]",
	Short: "Set the device address, save it and reconnect",
	Long: `Set the device IP and optionally the port and unit id. Omitted values
are kept. The settings are saved before reconnecting, so they are kept even
when the device cannot be reached.`,
	Example: `  docon cfg 192.168.1.20
  docon cfg 192.168.1.20 1502 3`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := server.Request{Op: server.OpCfg, IP: &args[0]}
		if len(args) >= 2 {
			port, err := parseArg("port", args[1])
			if err != nil {
				return err
			}
			req.Port = &port
		}
		if len(args) == 3 {
			unit, err := parseArg("uid", args[2])
			if err != nil {
				return err
			}
			req.UnitID = &unit
		}
		return runOp(cmd, req, "Device address updated")
	},
}

// statusCmd reads the coil snapshot or one channel
var statusCmd = &cobra.Command{
	Use:   "status [1|2]",
	Short: "Show coils 0-7 and the settings, or the state of one DO",
	Example: `  docon status
  docon status 2 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			channel, err := parseArg("channel", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, server.Request{Op: server.OpChannel, Channel: channel},
				fmt.Sprintf("DO%d status", channel))
		}
		return runOp(cmd, server.Request{Op: server.OpStatus}, "Device status")
	},
}

// showcfgCmd prints the settings without touching the device
var showcfgCmd = &cobra.Command{
	Use:   "showcfg",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, server.Request{Op: server.OpConfig}, "Settings")
	},
}

// runOp opens the service, runs one request and prints the outcome
func runOp(cmd *cobra.Command, req server.Request, title string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, persist, err := server.Execute(a.svc, &req)
	return report(cmd.OutOrStdout(), title, result, persist, err)
}

func parseArg(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return v, nil
}
