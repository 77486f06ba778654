package fault

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeValidation indicates bad caller input (channel, coil, duration, port...)
	ErrTypeValidation ErrorType = iota
	// ErrTypeUnmappedChannel indicates a channel with no coil mapping
	ErrTypeUnmappedChannel
	// ErrTypeConnection indicates the TCP connect or master set-up failed
	ErrTypeConnection
	// ErrTypeTransport indicates an I/O or protocol fault on an established link
	ErrTypeTransport
	// ErrTypePersistence indicates the settings file could not be written
	ErrTypePersistence
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnmappedChannel:
		return "Unmapped Channel"
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypePersistence:
		return "Persistence Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Kind returns a stable machine-readable identifier for the error type
func (et ErrorType) Kind() string {
	switch et {
	case ErrTypeValidation:
		return "validation"
	case ErrTypeUnmappedChannel:
		return "unmapped_channel"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTransport:
		return "transport"
	case ErrTypePersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the single error value used across docon
type Error struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Channel   int       // Logical channel (0 when not channel-specific)
	Addr      string    // Device address host:port (for context)
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether the retry executor may retry it
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewUnmappedChannelError creates an error for a channel without a coil mapping
func NewUnmappedChannelError(channel int) *Error {
	return &Error{
		Type:    ErrTypeUnmappedChannel,
		Message: fmt.Sprintf("DO%d has no coil mapping", channel),
		Channel: channel,
	}
}

// NewConnectionError creates a connection error for the given device address
func NewConnectionError(addr string, err error) *Error {
	return &Error{
		Type:      ErrTypeConnection,
		Message:   fmt.Sprintf("cannot connect to %s", addr),
		Addr:      addr,
		Err:       err,
		Retryable: true,
	}
}

// NewTransportError creates a transport error
func NewTransportError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeTransport,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewPersistenceError creates a persistence error for the given file
func NewPersistenceError(path string, err error) *Error {
	return &Error{
		Type:    ErrTypePersistence,
		Message: fmt.Sprintf("failed to save settings to %s", path),
		Err:     err,
	}
}

// Classify turns a raw error from the wire library into a fault.
// Network, timeout and EOF errors become transport faults; anything that
// already is a *Error is returned unchanged; the rest is ErrTypeUnknown.
func Classify(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	if isNetworkFault(err) {
		return NewTransportError(message, err)
	}

	return &Error{
		Type:    ErrTypeUnknown,
		Message: message,
		Err:     err,
	}
}

func isNetworkFault(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return false
}

func typeOf(err error) (ErrorType, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Type, true
	}
	return ErrTypeUnknown, false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeValidation
}

// IsUnmappedChannelError checks if an error is an unmapped channel error
func IsUnmappedChannelError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeUnmappedChannel
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeConnection
}

// IsTransportError checks if an error came from the link (connect or I/O)
func IsTransportError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeTransport || t == ErrTypeConnection)
}

// IsPersistenceError checks if an error is a persistence error
func IsPersistenceError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypePersistence
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// KindOf returns the machine-readable kind of err ("unknown" for foreign errors)
func KindOf(err error) string {
	t, _ := typeOf(err)
	return t.Kind()
}

// ShortMessage returns a concise, operator-facing error message
func ShortMessage(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return err.Error()
	}

	switch fe.Type {
	case ErrTypeConnection:
		return fmt.Sprintf("Device not reachable at %s", fe.Addr)
	case ErrTypeTransport:
		if fe.Err != nil && os.IsTimeout(fe.Err) {
			return "Device not responding (timeout)"
		}
		return "Communication with device failed: " + fe.Message
	case ErrTypePersistence:
		return "Settings not saved: " + fe.Message
	case ErrTypeUnknown:
		if fe.Err != nil {
			return fmt.Sprintf("%s: %v", fe.Message, fe.Err)
		}
		return fe.Message
	default:
		return fe.Message
	}
}

// Tips returns troubleshooting suggestions for an error, nil when there are none
func Tips(err error) []string {
	var fe *Error
	if !errors.As(err, &fe) {
		return nil
	}

	switch fe.Type {
	case ErrTypeConnection:
		return []string{
			"Check that the DO box is powered and cabled",
			"Verify ip/port with 'showcfg' (Modbus/TCP default port is 502)",
			"Change the target with 'cfg <ip> <port> <uid>'",
		}
	case ErrTypeTransport:
		return []string{
			"The connection dropped and retries were exhausted",
			"Check the unit id matches the device ('cfg <ip> <port> <uid>')",
			"Run 'status' to test the link",
		}
	case ErrTypeUnmappedChannel:
		return []string{fmt.Sprintf("Map the channel first, e.g. 'map %d 0'", fe.Channel)}
	default:
		return nil
	}
}

// Hint returns troubleshooting advice for an error, or "" when there is none
func Hint(err error) string {
	tips := Tips(err)
	switch len(tips) {
	case 0:
		return ""
	case 1:
		return tips[0]
	}

	lines := []string{"Troubleshooting:"}
	for _, tip := range tips {
		lines = append(lines, "  • "+tip)
	}
	return strings.Join(lines, "\n")
}
