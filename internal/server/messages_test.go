package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/fault"
)

// stubController answers every operation with canned values.
type stubController struct {
	persist error
	err     error
}

func (s *stubController) ControlDo(req control.ControlRequest) (*control.ControlResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &control.ControlResult{Channel: req.Channel, On: req.On, Physical: req.On}, nil
}

func (s *stubController) PulseDo(req control.PulseRequest) (*control.PulseResult, error) {
	return &control.PulseResult{Channel: req.Channel, DurationMs: req.DurationMs}, s.err
}

func (s *stubController) ToggleChannelInvert(channel int) (*control.InvertResult, error) {
	return &control.InvertResult{Channel: channel, Inverted: true, Persist: s.persist}, nil
}

func (s *stubController) SetChannelMapping(req control.MappingRequest) (*control.MappingResult, error) {
	return &control.MappingResult{Channel: req.Channel, Coil: req.Coil, Persist: s.persist}, nil
}

func (s *stubController) UpdateConnectionConfig(req control.ConnectionRequest) (*control.ConnectionResult, error) {
	return &control.ConnectionResult{IP: *req.IP, Port: 502, UnitID: 1, Persist: s.persist}, s.err
}

func (s *stubController) GetDoStatus() (*control.Status, error) {
	return &control.Status{Coils: make([]bool, control.SnapshotSize)}, nil
}

func (s *stubController) GetChannelStatus(channel int) (*control.ChannelStatus, error) {
	return &control.ChannelStatus{Channel: channel}, nil
}

func (s *stubController) GetConfig() config.Settings {
	return *config.Default()
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"id":"7","op":"cfg","ip":"10.0.0.2","port":1502}`))
	require.NoError(t, err)
	assert.Equal(t, "7", req.ID)
	assert.Equal(t, OpCfg, req.Op)
	require.NotNil(t, req.IP)
	require.NotNil(t, req.Port)
	assert.Nil(t, req.UnitID)
	assert.Equal(t, "10.0.0.2", *req.IP)
	assert.Equal(t, 1502, *req.Port)

	_, err = ParseRequest([]byte(`[1,2]`))
	assert.True(t, fault.IsValidationError(err))
}

func TestDispatchPersistWarningKeepsSuccess(t *testing.T) {
	svc := &stubController{
		persist: fault.NewPersistenceError("/ro/config.yaml", errors.New("read-only file system")),
	}

	resp := Dispatch(svc, &Request{ID: "1", Op: OpInvert, Channel: 2})

	assert.True(t, resp.OK)
	assert.Contains(t, resp.Warning, "Settings not saved")
	res, ok := resp.Result.(*control.InvertResult)
	require.True(t, ok)
	assert.True(t, res.Inverted)
}

func TestDispatchCfgReturnsResultWithError(t *testing.T) {
	ip := "10.0.0.2"
	svc := &stubController{err: fault.NewConnectionError("10.0.0.2:502", errors.New("refused"))}

	resp := Dispatch(svc, &Request{Op: OpCfg, IP: &ip})

	assert.False(t, resp.OK)
	assert.Equal(t, "connection", resp.Kind)
	assert.Equal(t, "Device not reachable at 10.0.0.2:502", resp.Error)
	assert.NotNil(t, resp.Result)
}

func TestDispatchFailureHasNoResult(t *testing.T) {
	svc := &stubController{err: fault.NewUnmappedChannelError(1)}

	resp := Dispatch(svc, &Request{ID: "9", Op: OpOff, Channel: 1})

	assert.False(t, resp.OK)
	assert.Equal(t, "9", resp.ID)
	assert.Equal(t, "unmapped_channel", resp.Kind)
	assert.Nil(t, resp.Result)
}

func TestExecuteConfigReturnsSettings(t *testing.T) {
	result, persist, err := Execute(&stubController{}, &Request{Op: OpConfig})
	require.NoError(t, err)
	assert.NoError(t, persist)
	assert.Equal(t, *config.Default(), result)
}
