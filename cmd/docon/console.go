package main

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/docon/internal/console"
	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/ui"
	"github.com/muurk/docon/internal/version"
)

// runConsole starts the interactive console: the Bubble Tea program on a
// terminal, a plain line loop when stdin is piped.
func runConsole(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	intro := welcome(a)

	if ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout) {
		return console.RunTUI(a.svc, intro)
	}

	out := cmd.OutOrStdout()
	_, _ = out.Write([]byte(intro))
	return console.RunLines(console.NewShell(a.svc, out), cmd.InOrStdin(), out, false)
}

// welcome renders the banner, command list and settings, and tries the
// first connection. A failed connection is only a warning; every command
// connects again on its own.
func welcome(a *app) string {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf)
	sh := console.NewShell(a.svc, &buf)

	p.Println(ui.PromptStyle.Render("docon " + version.Version))
	p.Println(ui.MutedStyle.Render("settings: " + a.store.Path()))
	p.Newline()
	sh.PrintHelp()
	p.Newline()
	sh.PrintSummary()

	if err := a.session.EnsureConnected(); err != nil {
		p.Warning("%s (commands will retry)", fault.ShortMessage(err))
	} else {
		p.Success("connected to %s", a.session.Target())
	}
	return buf.String()
}
