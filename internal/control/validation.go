package control

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/fault"
)

// MaxCoil is the highest coil address the protocol can express.
const MaxCoil = 65535

// ValidateChannel validates a logical channel number.
// Only DO1 and DO2 exist.
func ValidateChannel(channel int) error {
	if channel < 1 || channel > config.Channels {
		return fault.NewValidationError(fmt.Sprintf("channel must be 1 or 2, got %d", channel))
	}
	return nil
}

// ValidateCoil validates a coil address for a mapping.
func ValidateCoil(coil int) error {
	if coil < 0 || coil > MaxCoil {
		return fault.NewValidationError(fmt.Sprintf("coil must be 0-%d, got %d", MaxCoil, coil))
	}
	return nil
}

// MaxDurationMs is the longest pulse that fits a time.Duration.
const MaxDurationMs = math.MaxInt64 / int64(time.Millisecond)

// ValidateDuration validates a pulse length in milliseconds.
func ValidateDuration(durationMs int) error {
	if durationMs <= 0 {
		return fault.NewValidationError(fmt.Sprintf("pulse duration must be a positive number of milliseconds, got %d", durationMs))
	}
	if int64(durationMs) > MaxDurationMs {
		return fault.NewValidationError(fmt.Sprintf("pulse duration must be at most %d milliseconds, got %d", MaxDurationMs, durationMs))
	}
	return nil
}

// ValidatePort validates a Modbus/TCP port.
// Valid range is 1-65535.
func ValidatePort(port int) error {
	if port < 1 || port > config.MaxPort {
		return fault.NewValidationError(fmt.Sprintf("port must be 1-%d, got %d", config.MaxPort, port))
	}
	return nil
}

// ValidateUnitID validates a Modbus unit identifier (0-255).
func ValidateUnitID(unitID int) error {
	if unitID < 0 || unitID > config.MaxUnitID {
		return fault.NewValidationError(fmt.Sprintf("unit id must be 0-%d, got %d", config.MaxUnitID, unitID))
	}
	return nil
}

// ValidateHost validates a device host name or address.
func ValidateHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return fault.NewValidationError("ip cannot be empty")
	}
	if strings.ContainsAny(host, " \t/") {
		return fault.NewValidationError(fmt.Sprintf("invalid ip or host name %q", host))
	}
	return nil
}
