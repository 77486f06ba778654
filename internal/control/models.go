package control

import (
	"github.com/muurk/docon/internal/config"
)

// SnapshotSize is the number of coils read for a status snapshot, from coil 0.
const SnapshotSize = 8

// ControlRequest switches a channel on or off.
type ControlRequest struct {
	Channel int  `json:"channel"`
	On      bool `json:"on"`
}

// ControlResult reports a completed ControlDo.
type ControlResult struct {
	Channel  int    `json:"channel"`
	Coil     int    `json:"coil"`
	On       bool   `json:"on"`       // Requested logical state
	Physical bool   `json:"physical"` // Value written to the coil
	Snapshot []bool `json:"snapshot"` // Read-back of coils 0-7, advisory
	Attempts int    `json:"attempts"`
}

// PulseRequest drives a channel on for DurationMs, then off.
type PulseRequest struct {
	Channel    int `json:"channel"`
	DurationMs int `json:"durationMs"`
}

// PulseResult reports a completed PulseDo.
type PulseResult struct {
	Channel    int    `json:"channel"`
	Coil       int    `json:"coil"`
	DurationMs int    `json:"durationMs"`
	OnValue    bool   `json:"onValue"` // Physical value written first
	Snapshot   []bool `json:"snapshot"`
	Attempts   int    `json:"attempts"` // >1 means the whole pulse was repeated
}

// InvertResult reports the new polarity of a channel.
type InvertResult struct {
	Channel  int   `json:"channel"`
	Inverted bool  `json:"inverted"`
	Persist  error `json:"-"` // Save failure, the change is kept in memory
}

// MappingRequest assigns a coil to a channel.
type MappingRequest struct {
	Channel int `json:"channel"`
	Coil    int `json:"coil"`
}

// MappingResult reports a mapping change.
type MappingResult struct {
	Channel  int   `json:"channel"`
	Coil     int   `json:"coil"`
	Previous int   `json:"previous"`
	Persist  error `json:"-"`
}

// ConnectionRequest updates the device address. Nil fields are left as they are.
type ConnectionRequest struct {
	IP     *string `json:"ip,omitempty"`
	Port   *int    `json:"port,omitempty"`
	UnitID *int    `json:"unitId,omitempty"`
}

// ConnectionResult reports the merged connection settings.
type ConnectionResult struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	UnitID  int    `json:"unitId"`
	Persist error  `json:"-"`
}

// Status is a raw device snapshot plus the settings in effect.
// Coil values are physical; no mapping or polarity is applied.
type Status struct {
	Coils    []bool          `json:"coils"`
	Settings config.Settings `json:"settings"`
}

// ChannelStatus is the state of one mapped channel.
type ChannelStatus struct {
	Channel  int  `json:"channel"`
	Coil     int  `json:"coil"`
	Inverted bool `json:"inverted"`
	Physical bool `json:"physical"` // Coil value on the device
	On       bool `json:"on"`       // Logical state after polarity
}

// physicalValue applies channel polarity to a logical state.
func physicalValue(logical, inverted bool) bool {
	if inverted {
		return !logical
	}
	return logical
}
