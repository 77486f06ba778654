package ui

import (
	"fmt"
	"strings"
)

// RenderCoils renders a coil snapshot as "0● 1○ 2○ ...", lowest address first
func RenderCoils(values []bool) string {
	return RenderCoilsFrom(0, values)
}

// RenderCoilsFrom renders a coil snapshot whose first value is coil start
func RenderCoilsFrom(start int, values []bool) string {
	parts := make([]string, len(values))
	for i, v := range values {
		label := fmt.Sprintf("%d", start+i)
		if v {
			parts[i] = label + CoilOnStyle.Render(CoilOnMarker)
		} else {
			parts[i] = label + CoilOffStyle.Render(CoilOffMarker)
		}
	}
	return strings.Join(parts, " ")
}

// OnOff returns "ON" or "OFF"
func OnOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
