package fault

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		typ  ErrorType
		want string
		kind string
	}{
		{ErrTypeValidation, "Validation Error", "validation"},
		{ErrTypeUnmappedChannel, "Unmapped Channel", "unmapped_channel"},
		{ErrTypeConnection, "Connection Error", "connection"},
		{ErrTypeTransport, "Transport Error", "transport"},
		{ErrTypePersistence, "Persistence Error", "persistence"},
		{ErrTypeUnknown, "Unknown Error", "unknown"},
		{ErrorType(42), "ErrorType(42)", "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
		if got := tt.typ.Kind(); got != tt.kind {
			t.Errorf("ErrorType(%d).Kind() = %q, want %q", tt.typ, got, tt.kind)
		}
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError("10.0.0.9:502", cause)

	if !strings.Contains(err.Error(), "10.0.0.9:502") {
		t.Errorf("Error() = %q, should mention address", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}

	plain := NewValidationError("bad channel")
	if plain.Error() != "Validation Error: bad channel" {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestRetryableCategories(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		transport bool
	}{
		{"validation", NewValidationError("x"), false, false},
		{"unmapped", NewUnmappedChannelError(2), false, false},
		{"connection", NewConnectionError("h:1", io.EOF), true, true},
		{"transport", NewTransportError("write", io.EOF), true, true},
		{"persistence", NewPersistenceError("/tmp/x", io.ErrShortWrite), false, false},
		{"foreign", errors.New("boom"), false, false},
		{"wrapped transport", fmt.Errorf("pulse: %w", NewTransportError("read", io.EOF)), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsTransportError(tt.err); got != tt.transport {
				t.Errorf("IsTransportError() = %v, want %v", got, tt.transport)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil, "x") != nil {
		t.Error("Classify(nil) should be nil")
	}

	existing := NewValidationError("keep me")
	if Classify(existing, "other") != existing {
		t.Error("Classify should return an existing *Error unchanged")
	}

	netFaults := []error{
		io.EOF,
		io.ErrUnexpectedEOF,
		timeoutErr{},
		&net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")},
		fmt.Errorf("modbus: %w", net.ErrClosed),
	}
	for _, err := range netFaults {
		got := Classify(err, "read coils")
		if got.Type != ErrTypeTransport || !got.Retryable {
			t.Errorf("Classify(%v) = %v, want retryable transport", err, got.Type)
		}
	}

	// Modbus exception responses are protocol answers, not link faults
	exc := Classify(errors.New("modbus: exception '2' (illegal data address)"), "write coil")
	if exc.Type != ErrTypeUnknown || exc.Retryable {
		t.Errorf("exception response classified as %v", exc.Type)
	}
}

func TestIsHelpers(t *testing.T) {
	if !IsValidationError(NewValidationError("x")) {
		t.Error("IsValidationError should be true")
	}
	if !IsUnmappedChannelError(NewUnmappedChannelError(1)) {
		t.Error("IsUnmappedChannelError should be true")
	}
	if !IsConnectionError(NewConnectionError("h:1", nil)) {
		t.Error("IsConnectionError should be true")
	}
	if !IsPersistenceError(NewPersistenceError("p", nil)) {
		t.Error("IsPersistenceError should be true")
	}
	if IsValidationError(errors.New("plain")) {
		t.Error("plain errors are not validation errors")
	}
	if KindOf(errors.New("plain")) != "unknown" {
		t.Error("KindOf(plain) should be unknown")
	}
}

func TestShortMessageAndHint(t *testing.T) {
	conn := NewConnectionError("192.168.1.5:502", io.EOF)
	if got := ShortMessage(conn); got != "Device not reachable at 192.168.1.5:502" {
		t.Errorf("ShortMessage(conn) = %q", got)
	}
	if !strings.Contains(Hint(conn), "Troubleshooting") {
		t.Error("connection errors should carry a hint")
	}

	timeout := NewTransportError("read coils", &net.OpError{Op: "read", Err: timeoutErr{}})
	if got := ShortMessage(timeout); !strings.Contains(got, "timeout") {
		t.Errorf("ShortMessage(timeout) = %q", got)
	}

	unmapped := NewUnmappedChannelError(2)
	if !strings.Contains(Hint(unmapped), "map 2") {
		t.Errorf("Hint(unmapped) = %q", Hint(unmapped))
	}

	if Hint(errors.New("x")) != "" {
		t.Error("foreign errors have no hint")
	}
	if ShortMessage(errors.New("x")) != "x" {
		t.Error("foreign errors keep their message")
	}
}

func TestTips(t *testing.T) {
	if got := Tips(NewConnectionError("h:1", nil)); len(got) != 3 {
		t.Errorf("Tips(connection) = %v", got)
	}
	if got := Tips(NewValidationError("x")); got != nil {
		t.Errorf("Tips(validation) = %v, want nil", got)
	}
	if got := Hint(NewTransportError("x", nil)); !strings.HasPrefix(got, "Troubleshooting:\n  • ") {
		t.Errorf("Hint(transport) = %q", got)
	}
}
