package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/docon/internal/logging"
	"github.com/muurk/docon/internal/server"
	"github.com/muurk/docon/internal/simulator"
	"github.com/muurk/docon/internal/ui"
)

// Serve and simulate flags
var (
	serveHost     string
	servePort     int
	simulateAddr  string
	simulateCoils []int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the DO operations over WebSocket",
	Long: `Start a WebSocket endpoint that accepts JSON control requests on /ws.

Requests from all clients are run one at a time against the configured
device. GET /healthz answers 200 without touching the device.`,
	Example: `  # Listen on all interfaces, port 8502
  docon serve

  # Loopback only
  docon serve --host 127.0.0.1 --port 9000

  # Talk to it
  echo '{"id":"1","op":"pulse","channel":1,"durationMs":500}' | websocat ws://localhost:8502/ws`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (empty = all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", server.DefaultPort, "Listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		// A server without logs is hard to operate
		if err := logging.Initialize("info"); err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	config := &server.Config{
		Host: serveHost,
		Port: servePort,
	}
	srv, err := server.New(config, a.svc)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintHeader(
		ui.NewHeader("WebSocket control endpoint", "docon serve").
			AddParam("Listen", "ws://"+srv.Addr()+"/ws").
			AddParam("Device", a.session.Target().String()).
			AddParam("Settings", a.store.Path()),
	)

	return srv.Start()
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Modbus/TCP device simulator",
	Long: `Run an in-process Modbus/TCP slave with 65536 coils for trying docon
without hardware. Every coil write is logged.

Point docon at it with 'docon cfg 127.0.0.1 1502'.`,
	Example: `  docon simulate
  docon simulate --listen 0.0.0.0:502 --on 3 --on 4`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateAddr, "listen", "127.0.0.1:1502", "Listen address")
	simulateCmd.Flags().IntSliceVar(&simulateCoils, "on", nil, "Coils that start ON (repeatable)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		// Coil writes are logged at info
		if err := logging.Initialize("info"); err != nil {
			return err
		}
	}

	dev := simulator.New()
	for _, c := range simulateCoils {
		if c < 0 || c > 65535 {
			return fmt.Errorf("coil must be 0-65535, got %d", c)
		}
		dev.SetCoil(uint16(c), true)
	}
	if err := dev.Start(simulateAddr); err != nil {
		return err
	}
	defer dev.Close()

	ui.NewPrinter(cmd.OutOrStdout()).PrintHeader(
		ui.NewHeader("Device simulator", "docon simulate").
			AddParam("Listen", dev.Addr()).
			AddParam("Coils", ui.RenderCoils(dev.Coils(0, 8))),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	<-sigChan

	logging.Info("Shutdown signal received, stopping simulator...")
	return nil
}
