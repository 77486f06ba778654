package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/goburrow/modbus"

	"github.com/muurk/docon/internal/logging"
)

// Coil values on the wire for function 0x05 (write single coil)
const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// MaxReadCoils is the largest quantity a single read coils request may ask for.
const MaxReadCoils = 2000

// Target identifies the device a session talks to.
type Target struct {
	Host   string
	Port   int
	UnitID byte
}

// Address returns host:port.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String implements fmt.Stringer
func (t Target) String() string {
	return fmt.Sprintf("%s (unit %d)", t.Address(), t.UnitID)
}

// Link is an open connection with a protocol master bound to a unit id.
// Implementations need not be safe for concurrent use; the session
// serializes every call.
type Link interface {
	ReadCoils(address, quantity uint16) ([]byte, error)
	WriteSingleCoil(address, value uint16) ([]byte, error)
	Close() error
}

// Dialer opens a Link to target. timeout bounds the connect and every
// request made on the returned link.
type Dialer func(target Target, timeout time.Duration) (Link, error)

type modbusLink struct {
	modbus.Client
	handler *modbus.TCPClientHandler
}

func (l *modbusLink) Close() error {
	return l.handler.Close()
}

// DialModbus connects to a Modbus/TCP device.
func DialModbus(target Target, timeout time.Duration) (Link, error) {
	handler := modbus.NewTCPClientHandler(target.Address())
	handler.Timeout = timeout
	handler.SlaveId = target.UnitID
	// The session decides when the connection is torn down
	handler.IdleTimeout = 0
	handler.Logger = logging.WireLogger()

	if err := handler.Connect(); err != nil {
		return nil, err
	}

	return &modbusLink{
		Client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// unpackCoils expands a coil bitmap (LSB of the first byte is the lowest
// address) into count booleans.
func unpackCoils(data []byte, count uint16) ([]bool, error) {
	need := (int(count) + 7) / 8
	if len(data) < need {
		return nil, fmt.Errorf("short coil response: got %d bytes, need %d", len(data), need)
	}

	values := make([]bool, count)
	for i := range values {
		values[i] = data[i/8]&(1<<(uint(i)%8)) != 0
	}
	return values, nil
}
