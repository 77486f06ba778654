// Package control implements the DO channel control service.
//
// The Service is the only place that knows about logical channels. It
// validates the channel, resolves the coil it is mapped to, applies the
// channel polarity (physical = inverted ? !on : on) and runs the resulting
// coil operations through a transport.Executor.
//
// Validation and mapping faults are returned before anything is sent to
// the device. Settings changes (polarity, mapping, connection) are saved
// immediately; a failed save is reported in the result's Persist field
// and never fails the command.
//
// Usage:
//
//	session := transport.NewSession(transport.Target{})
//	svc := control.NewService(session, config.NewStore(path))
//	defer session.Cleanup()
//
//	res, err := svc.ControlDo(control.ControlRequest{Channel: 1, On: true})
package control
