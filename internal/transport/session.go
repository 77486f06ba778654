package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"

	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/logging"
)

const (
	// DefaultTimeout bounds connect, send and receive
	DefaultTimeout = 3000 * time.Millisecond

	// DefaultSettle is the pause after a fresh connect before the first request
	DefaultSettle = 100 * time.Millisecond
)

// ErrNotConnected is the cause of transport faults raised when a wire
// operation is attempted without a connection.
var ErrNotConnected = errors.New("session is not connected")

// State is the connection state of a Session
type State int

const (
	// Disconnected means no link is open
	Disconnected State = iota
	// Connected means a link is open and no fault has been seen on it
	Connected
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Session owns the single connection to one device.
// Every method that touches the link holds one mutex for its whole
// duration, so at most one connect or wire operation is in flight.
type Session struct {
	// Timeout is passed to Dial for the connect and all requests
	Timeout time.Duration

	// Settle is slept after every successful connect
	Settle time.Duration

	// Dial opens the link (DialModbus unless replaced)
	Dial Dialer

	// Sleep is used for the settle pause
	Sleep func(time.Duration)

	mu     sync.Mutex
	target Target
	link   Link
	state  State
}

// NewSession creates a disconnected session for target.
func NewSession(target Target) *Session {
	return &Session{
		Timeout: DefaultTimeout,
		Settle:  DefaultSettle,
		Dial:    DialModbus,
		Sleep:   time.Sleep,
		target:  target,
	}
}

// Target returns the device the next connect will use.
func (s *Session) Target() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// SetTarget replaces the device address and unit id. An open link is kept
// until the next Reconnect.
func (s *Session) SetTarget(target Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = target
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureConnected opens the link unless it is already open and healthy.
func (s *Session) EnsureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked()
}

// Reconnect tears down the link and opens a new one.
func (s *Session) Reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.LogConnection(s.target.Address(), "reconnect")
	s.closeLocked()
	return s.connectLocked()
}

// Cleanup closes the link. It is safe in any state and never fails.
func (s *Session) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// WriteSingleCoil writes one coil.
func (s *Session) WriteSingleCoil(address uint16, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connected {
		return fault.NewTransportError(fmt.Sprintf("write coil %d", address), ErrNotConnected)
	}

	v := coilOff
	if value {
		v = coilOn
	}
	if _, err := s.link.WriteSingleCoil(address, v); err != nil {
		return s.wireFault(fmt.Sprintf("write coil %d", address), err)
	}

	logging.LogCoilWrite(s.target.Address(), s.target.UnitID, address, value)
	return nil
}

// ReadCoils reads count coils starting at start, lowest address first.
func (s *Session) ReadCoils(start, count uint16) ([]bool, error) {
	if count == 0 || count > MaxReadCoils {
		return nil, fault.NewValidationError(fmt.Sprintf("coil count must be 1-%d, got %d", MaxReadCoils, count))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := fmt.Sprintf("read %d coils at %d", count, start)
	if s.state != Connected {
		return nil, fault.NewTransportError(msg, ErrNotConnected)
	}

	data, err := s.link.ReadCoils(start, count)
	if err != nil {
		return nil, s.wireFault(msg, err)
	}

	values, err := unpackCoils(data, count)
	if err != nil {
		return nil, s.wireFault(msg, err)
	}

	logging.LogCoilRead(s.target.Address(), s.target.UnitID, start, values)
	return values, nil
}

func (s *Session) connectLocked() error {
	if s.state == Connected && s.link != nil {
		return nil
	}

	// Drop any half-open handle left by a fault
	s.closeLocked()

	addr := s.target.Address()
	logging.LogConnection(addr, "connecting")

	link, err := s.Dial(s.target, s.Timeout)
	if err != nil {
		logging.Warn("Connect failed", zap.String("addr", addr), zap.Error(err))
		return fault.NewConnectionError(addr, err)
	}

	s.link = link
	s.state = Connected
	logging.LogConnection(addr, "connected")

	if s.Settle > 0 {
		s.Sleep(s.Settle)
	}
	return nil
}

func (s *Session) closeLocked() {
	if s.link != nil {
		if err := s.link.Close(); err != nil {
			logging.Debug("Error closing link", zap.Error(err))
		}
		logging.LogConnection(s.target.Address(), "closed")
	}
	s.link = nil
	s.state = Disconnected
}

// wireFault converts an error from the link. A Modbus exception response
// means the device answered, so the link stays up and the fault is not
// retryable. Anything else is a transport fault and drops the link.
func (s *Session) wireFault(msg string, err error) error {
	var exc *modbus.ModbusError
	if errors.As(err, &exc) {
		return fault.Classify(err, msg)
	}

	s.closeLocked()
	fe := fault.NewTransportError(msg, err)
	fe.Addr = s.target.Address()
	return fe
}
