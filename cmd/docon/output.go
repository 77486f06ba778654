package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/server"
	"github.com/muurk/docon/internal/ui"
)

// report prints the outcome of one request as a result box, or as the
// endpoint's JSON reply with --format json. It returns err unchanged.
func report(w io.Writer, title string, result any, persist, err error) error {
	if outputFormat == "json" {
		data, jerr := json.MarshalIndent(server.NewResponse("", result, persist, err), "", "  ")
		if jerr != nil {
			return fmt.Errorf("failed to marshal JSON: %w", jerr)
		}
		_, _ = fmt.Fprintln(w, string(data))
		return err
	}

	p := ui.NewPrinter(w)

	var r *ui.Result
	switch {
	case err != nil:
		r = ui.NewFailureResult(title, err)
	case persist != nil:
		r = ui.NewWarningResult(title)
	default:
		r = ui.NewSuccessResult(title)
	}
	for _, d := range details(result) {
		r.AddDetail(d.Key, d.Value)
	}
	if persist != nil {
		r.AddDetail("Saved", fault.ShortMessage(persist))
	}

	p.PrintResult(r)
	return err
}

// details lists the fields of an operation result in display order
func details(result any) []ui.Detail {
	switch res := result.(type) {
	case *control.ControlResult:
		return []ui.Detail{
			{Key: "Coil", Value: strconv.Itoa(res.Coil)},
			{Key: "Requested", Value: ui.OnOff(res.On)},
			{Key: "Written", Value: ui.OnOff(res.Physical)},
			{Key: "Coils", Value: ui.RenderCoils(res.Snapshot)},
			{Key: "Attempts", Value: strconv.Itoa(res.Attempts)},
		}
	case *control.PulseResult:
		return []ui.Detail{
			{Key: "Coil", Value: strconv.Itoa(res.Coil)},
			{Key: "Duration", Value: fmt.Sprintf("%d ms", res.DurationMs)},
			{Key: "On value", Value: ui.OnOff(res.OnValue)},
			{Key: "Coils", Value: ui.RenderCoils(res.Snapshot)},
			{Key: "Attempts", Value: attempts(res.Attempts)},
		}
	case *control.InvertResult:
		return []ui.Detail{
			{Key: "Inverted", Value: strconv.FormatBool(res.Inverted)},
		}
	case *control.MappingResult:
		return []ui.Detail{
			{Key: "Coil", Value: strconv.Itoa(res.Coil)},
			{Key: "Previous", Value: coilLabel(res.Previous)},
		}
	case *control.ConnectionResult:
		return []ui.Detail{
			{Key: "Device", Value: net.JoinHostPort(res.IP, strconv.Itoa(res.Port))},
			{Key: "Unit id", Value: strconv.Itoa(res.UnitID)},
		}
	case *control.Status:
		return append([]ui.Detail{
			{Key: "Coils", Value: ui.RenderCoils(res.Coils)},
		}, settingsDetails(res.Settings)...)
	case *control.ChannelStatus:
		return []ui.Detail{
			{Key: "Coil", Value: strconv.Itoa(res.Coil)},
			{Key: "Inverted", Value: strconv.FormatBool(res.Inverted)},
			{Key: "Coil value", Value: ui.OnOff(res.Physical)},
			{Key: "State", Value: ui.OnOff(res.On)},
		}
	case config.Settings:
		return settingsDetails(res)
	default:
		return nil
	}
}

func settingsDetails(s config.Settings) []ui.Detail {
	return []ui.Detail{
		{Key: "Device", Value: s.Address()},
		{Key: "Unit id", Value: strconv.Itoa(s.UnitID)},
		{Key: "DO1", Value: channelLabel(&s, 1)},
		{Key: "DO2", Value: channelLabel(&s, 2)},
	}
}

func channelLabel(s *config.Settings, channel int) string {
	label := coilLabel(s.Coil(channel))
	if s.Inverted(channel) {
		label += " (inverted)"
	}
	return label
}

func coilLabel(coil int) string {
	if coil < 0 {
		return "unmapped"
	}
	return fmt.Sprintf("coil %d", coil)
}

func attempts(n int) string {
	if n > 1 {
		return fmt.Sprintf("%d (pulse repeated after a link fault)", n)
	}
	return strconv.Itoa(n)
}
