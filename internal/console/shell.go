package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/logging"
	"github.com/muurk/docon/internal/ui"
)

// Controller is the set of operations the console drives.
// *control.Service implements it.
type Controller interface {
	ControlDo(req control.ControlRequest) (*control.ControlResult, error)
	PulseDo(req control.PulseRequest) (*control.PulseResult, error)
	ToggleChannelInvert(channel int) (*control.InvertResult, error)
	SetChannelMapping(req control.MappingRequest) (*control.MappingResult, error)
	UpdateConnectionConfig(req control.ConnectionRequest) (*control.ConnectionResult, error)
	GetDoStatus() (*control.Status, error)
	GetChannelStatus(channel int) (*control.ChannelStatus, error)
	GetConfig() config.Settings
}

// Command describes one console command for the help text.
type Command struct {
	Usage       string
	Description string
}

// Commands lists every console command in help order.
var Commands = []Command{
	{"on <1|2>", "switch a DO on (polarity applied)"},
	{"off <1|2>", "switch a DO off (polarity applied)"},
	{"pulse <1|2> <ms>", "drive a DO on for <ms> milliseconds, then off"},
	{"inv <1|2>", "toggle the polarity of a DO and save"},
	{"map <ch> <coil>", "map a DO to a coil (e.g. map 1 0) and save"},
	{"cfg <ip> [port] [uid]", "set the device address, save and reconnect"},
	{"status [1|2]", "show the 8 coils and the mapping/polarity settings"},
	{"showcfg", "print the current settings (JSON)"},
	{"help", "show this help"},
	{"exit | quit", "leave the console"},
}

// Shell parses console command lines and runs them against a Controller.
// Every command prints its outcome; a failure is reported as one line and
// never stops the shell.
type Shell struct {
	svc Controller
	p   *ui.Printer
}

// NewShell creates a shell writing to out.
func NewShell(svc Controller, out io.Writer) *Shell {
	return &Shell{
		svc: svc,
		p:   ui.NewPrinter(out),
	}
}

// Exec runs one command line. It returns true when the line asks to quit.
func (sh *Shell) Exec(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]
	logging.Debug("Console command", zap.String("command", cmd), zap.Strings("args", args))

	var err error
	switch cmd {
	case "exit", "quit":
		return true
	case "help", "?":
		sh.PrintHelp()
	case "on", "off":
		err = sh.onOff(cmd == "on", args)
	case "pulse":
		err = sh.pulse(args)
	case "inv":
		err = sh.invert(args)
	case "map":
		err = sh.mapping(args)
	case "cfg":
		err = sh.connection(args)
	case "status":
		err = sh.status(args)
	case "showcfg":
		err = sh.showConfig()
	default:
		err = usageError("unknown command %q, type 'help' for the command list", cmd)
	}

	if err != nil {
		sh.p.Failure("%s", describe(err))
	}
	return false
}

// PrintHelp prints the command list.
func (sh *Shell) PrintHelp() {
	sh.p.Println("Commands:")
	for _, c := range Commands {
		sh.p.Printf("  %-22s %s\n", c.Usage, ui.MutedStyle.Render(c.Description))
	}
}

// PrintSummary prints the connection and channel settings.
func (sh *Shell) PrintSummary() {
	printSettings(sh.p, sh.svc.GetConfig())
}

func (sh *Shell) onOff(on bool, args []string) error {
	name := "off"
	if on {
		name = "on"
	}
	if len(args) != 1 {
		return usageError("usage: %s <1|2>", name)
	}
	channel, err := parseInt("channel", args[0])
	if err != nil {
		return err
	}

	res, err := sh.svc.ControlDo(control.ControlRequest{Channel: channel, On: on})
	if err != nil {
		return err
	}
	sh.p.Success("DO%d requested=%s written=%t  coils: %s",
		res.Channel, ui.OnOff(res.On), res.Physical, ui.RenderCoils(res.Snapshot))
	return nil
}

func (sh *Shell) pulse(args []string) error {
	if len(args) != 2 {
		return usageError("usage: pulse <1|2> <ms>")
	}
	channel, err := parseInt("channel", args[0])
	if err != nil {
		return err
	}
	ms, err := parseInt("ms", args[1])
	if err != nil {
		return err
	}

	res, err := sh.svc.PulseDo(control.PulseRequest{Channel: channel, DurationMs: ms})
	if err != nil {
		return err
	}
	if res.Attempts > 1 {
		sh.p.Warning("link fault during pulse, the pulse was repeated (%d attempts)", res.Attempts)
	}
	sh.p.Success("DO%d pulse %dms done  coils: %s", res.Channel, res.DurationMs, ui.RenderCoils(res.Snapshot))
	return nil
}

func (sh *Shell) invert(args []string) error {
	if len(args) != 1 {
		return usageError("usage: inv <1|2>")
	}
	channel, err := parseInt("channel", args[0])
	if err != nil {
		return err
	}

	res, err := sh.svc.ToggleChannelInvert(channel)
	if err != nil {
		return err
	}
	sh.p.Success("DO%d invert = %t", res.Channel, res.Inverted)
	sh.persistWarning(res.Persist)
	return nil
}

func (sh *Shell) mapping(args []string) error {
	if len(args) != 2 {
		return usageError("usage: map <ch:1|2> <coil:>=0>")
	}
	channel, err := parseInt("channel", args[0])
	if err != nil {
		return err
	}
	coil, err := parseInt("coil", args[1])
	if err != nil {
		return err
	}

	res, err := sh.svc.SetChannelMapping(control.MappingRequest{Channel: channel, Coil: coil})
	if err != nil {
		return err
	}
	sh.p.Success("mapping updated: DO%d → coil %d", res.Channel, res.Coil)
	sh.persistWarning(res.Persist)
	return nil
}

func (sh *Shell) connection(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return usageError("usage: cfg <ip> [port] [uid]")
	}

	req := control.ConnectionRequest{IP: &args[0]}
	if len(args) >= 2 {
		port, err := parseInt("port", args[1])
		if err != nil {
			return err
		}
		req.Port = &port
	}
	if len(args) == 3 {
		unit, err := parseInt("uid", args[2])
		if err != nil {
			return err
		}
		req.UnitID = &unit
	}

	res, err := sh.svc.UpdateConnectionConfig(req)
	if res != nil {
		sh.p.Success("set ip=%s port=%d unitId=%d", res.IP, res.Port, res.UnitID)
		sh.persistWarning(res.Persist)
	}
	return err
}

func (sh *Shell) status(args []string) error {
	if len(args) > 1 {
		return usageError("usage: status [1|2]")
	}

	if len(args) == 1 {
		channel, err := parseInt("channel", args[0])
		if err != nil {
			return err
		}
		st, err := sh.svc.GetChannelStatus(channel)
		if err != nil {
			return err
		}
		sh.p.Printf("DO%d → coil %d: %s (coil %t, inverted %t)\n",
			st.Channel, st.Coil, ui.OnOff(st.On), st.Physical, st.Inverted)
		return nil
	}

	st, err := sh.svc.GetDoStatus()
	if err != nil {
		return err
	}
	sh.p.Printf("Coils: %s\n", ui.RenderCoils(st.Coils))
	printSettings(sh.p, st.Settings)
	return nil
}

func (sh *Shell) showConfig() error {
	data, err := json.MarshalIndent(sh.svc.GetConfig(), "", "  ")
	if err != nil {
		return err
	}
	sh.p.Println(string(data))
	return nil
}

func (sh *Shell) persistWarning(err error) {
	if err != nil {
		sh.p.Warning("%s", fault.ShortMessage(err))
	}
}

func printSettings(p *ui.Printer, s config.Settings) {
	p.Printf("Device:  %s (unit %d)\n", s.Address(), s.UnitID)
	p.Printf("Mapping: DO1 → %s, DO2 → %s\n", coilLabel(s.Coil(1)), coilLabel(s.Coil(2)))
	p.Printf("Invert:  DO1=%t, DO2=%t\n", s.Inverted(1), s.Inverted(2))
}

func coilLabel(coil int) string {
	if coil < 0 {
		return "unmapped"
	}
	return fmt.Sprintf("coil %d", coil)
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageError("%s must be an integer, got %q", name, s)
	}
	return v, nil
}

func usageError(format string, args ...any) error {
	return fault.NewValidationError(fmt.Sprintf(format, args...))
}

// describe renders an error as one line.
func describe(err error) string {
	msg := fault.ShortMessage(err)
	if fault.IsUnmappedChannelError(err) {
		msg += " (" + fault.Hint(err) + ")"
	}
	return msg
}
