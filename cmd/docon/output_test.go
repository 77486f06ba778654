package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/fault"
)

func withFormat(t *testing.T, format string) {
	t.Helper()
	old := outputFormat
	outputFormat = format
	t.Cleanup(func() { outputFormat = old })
}

func TestReportTextSuccess(t *testing.T) {
	withFormat(t, "text")
	var buf bytes.Buffer

	res := &control.ControlResult{Channel: 1, Coil: 0, On: true, Physical: false, Snapshot: []bool{false}, Attempts: 1}
	err := report(&buf, "DO1 switched on", res, nil, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "DO1 switched on")
	assert.Contains(t, out, "Requested")
	assert.Contains(t, out, "Written")
}

func TestReportTextPersistWarning(t *testing.T) {
	withFormat(t, "text")
	var buf bytes.Buffer

	persist := fault.NewPersistenceError("/ro/config.yaml", errors.New("read-only file system"))
	err := report(&buf, "DO2 polarity toggled", &control.InvertResult{Channel: 2, Inverted: true}, persist, nil)
	require.NoError(t, err, "a failed save does not fail the command")

	assert.Contains(t, buf.String(), "Settings not saved")
}

func TestReportJSON(t *testing.T) {
	withFormat(t, "json")
	var buf bytes.Buffer

	cause := fault.NewUnmappedChannelError(2)
	err := report(&buf, "DO2 switched on", nil, nil, cause)
	assert.Equal(t, cause, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "unmapped_channel", resp["kind"])
}

func TestDetailsSettings(t *testing.T) {
	s := config.Default()
	s.Ch2Coil = []int{config.Unmapped, config.Unmapped, 4}
	s.Invert = []bool{false, false, true}

	got := details(*s)

	var lines []string
	for _, d := range got {
		lines = append(lines, d.Key+"="+d.Value)
	}
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Device=192.168.1.5:502")
	assert.Contains(t, joined, "DO1=unmapped")
	assert.Contains(t, joined, "DO2=coil 4 (inverted)")
}

func TestDetailsUnknownResult(t *testing.T) {
	assert.Nil(t, details(nil))
	assert.Nil(t, details("text"))
}

func TestAttemptsLabel(t *testing.T) {
	assert.Equal(t, "1", attempts(1))
	assert.Contains(t, attempts(2), "repeated")
}

func TestParseArg(t *testing.T) {
	v, err := parseArg("channel", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = parseArg("channel", "two")
	assert.EqualError(t, err, `channel must be an integer, got "two"`)
}
