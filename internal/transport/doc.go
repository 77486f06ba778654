// Package transport owns the Modbus/TCP link to the DO device.
//
// A Session holds one connection and one protocol master
// (github.com/goburrow/modbus) bound to a unit id. All of its methods
// serialize behind a single mutex because the master is not safe for
// concurrent use. A wire fault drops the link so that the next
// EnsureConnected dials again.
//
// An Executor wraps operations with a bounded, jitter-free retry policy:
//
//	exec := transport.NewExecutor(session)
//	err := exec.Execute(func() error {
//		return session.WriteSingleCoil(0, true)
//	})
//
// Each attempt calls EnsureConnected and then the operation. A connection
// or transport fault is followed by a fixed backoff and a Reconnect, up to
// three attempts in total. Any other error is returned at once. The whole
// operation is repeated on retry, so multi-step operations restart from
// their first step.
package transport
