package simulator

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tbrandon/mbserver"
	"go.uber.org/zap"

	"github.com/muurk/docon/internal/logging"
)

// Modbus function codes served by the device
const (
	fcReadCoils          = 1
	fcWriteSingleCoil    = 5
	fcWriteMultipleCoils = 15
)

// Write records one coil write received by the device.
type Write struct {
	Coil  uint16
	Value bool
	At    time.Time
}

// Device is an in-process Modbus/TCP slave with coil memory.
// It answers any unit id.
type Device struct {
	srv  *mbserver.Server
	addr string

	mu     sync.Mutex
	writes []Write
}

// New creates a device with all coils off.
func New() *Device {
	d := &Device{srv: mbserver.NewServer()}

	d.srv.RegisterFunctionHandler(fcReadCoils, d.readCoils)
	d.srv.RegisterFunctionHandler(fcWriteSingleCoil, d.writeSingleCoil)
	d.srv.RegisterFunctionHandler(fcWriteMultipleCoils, d.writeMultipleCoils)

	return d
}

// Start listens on addr. An empty addr or a zero port picks a free port on
// the loopback interface.
func (d *Device) Start(addr string) error {
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if port == "0" {
		free, err := freePort(host)
		if err != nil {
			return err
		}
		addr = free
	}

	if err := d.srv.ListenTCP(addr); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	d.addr = addr
	logging.Info("Simulator listening", zap.String("addr", addr))
	return nil
}

// Addr returns the address the device listens on.
func (d *Device) Addr() string {
	return d.addr
}

// Close stops listening.
func (d *Device) Close() {
	d.srv.Close()
	logging.Info("Simulator stopped", zap.String("addr", d.addr))
}

// Coil returns the value of one coil.
func (d *Device) Coil(address uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.srv.Coils[address] != 0
}

// SetCoil sets one coil without recording a write.
func (d *Device) SetCoil(address uint16, value bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.srv.Coils[address] = bit(value)
}

// Coils returns count coils starting at start.
func (d *Device) Coils(start, count uint16) []bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	end := int(start) + int(count)
	if end > len(d.srv.Coils) {
		end = len(d.srv.Coils)
	}
	values := make([]bool, 0, count)
	for _, c := range d.srv.Coils[start:end] {
		values = append(values, c != 0)
	}
	return values
}

// Writes returns every coil write received so far, oldest first.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.writes...)
}

func (d *Device) readCoils(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return mbserver.ReadCoils(s, frame)
}

func (d *Device) writeSingleCoil(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	address := binary.BigEndian.Uint16(data[0:2])
	value := binary.BigEndian.Uint16(data[2:4]) != 0

	d.mu.Lock()
	defer d.mu.Unlock()

	s.Coils[address] = bit(value)
	d.record(address, value)
	return data[0:4], &mbserver.Success
}

func (d *Device) writeMultipleCoils(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 5 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	address := int(binary.BigEndian.Uint16(data[0:2]))
	count := int(binary.BigEndian.Uint16(data[2:4]))
	values := data[5:]

	if address+count > len(s.Coils) || len(values) < (count+7)/8 {
		return []byte{}, &mbserver.IllegalDataAddress
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < count; i++ {
		v := values[i/8]&(1<<(uint(i)%8)) != 0
		s.Coils[address+i] = bit(v)
		d.record(uint16(address+i), v)
	}
	return data[0:4], &mbserver.Success
}

func (d *Device) record(address uint16, value bool) {
	d.writes = append(d.writes, Write{Coil: address, Value: value, At: time.Now()})
	logging.Info("Coil written",
		zap.Uint16("coil", address),
		zap.Bool("value", value),
	)
}

func bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func freePort(host string) (string, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return "", fmt.Errorf("failed to find a free port: %w", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr, nil
}
