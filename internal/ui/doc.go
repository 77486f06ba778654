// Package ui provides terminal output components for the docon CLI.
//
// This package uses Lipgloss to render styled output for one-shot commands
// and the interactive console. Components follow a "render and print"
// pattern; the interactive console in package console builds its Bubble Tea
// model on top of the same styles.
//
// # Components
//
//   - Header: banner for long-running commands (serve, simulate)
//   - Result: success, failure and warning boxes; failures carry the
//     troubleshooting tips of their fault category
//   - Printer: writes components and one-line messages to an io.Writer
//   - RenderCoils: compact coil snapshot ("0● 1○ ...")
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintResult(ui.NewSuccessResult("DO1 switched on").
//	    AddDetail("Coil", "0").
//	    AddDetail("Snapshot", ui.RenderCoils(res.Snapshot)))
//
// # Logging Integration
//
// Logging is controlled via the DOCON_LOG_LEVEL environment variable or
// --log-level. When unset, zap logging is silent so the styled output is
// displayed cleanly. Log lines go to stderr, UI output to stdout.
package ui
