package config

import (
	"fmt"
	"net"
	"strconv"
)

// Default connection values
const (
	DefaultIP     = "192.168.1.5"
	DefaultPort   = 502
	DefaultUnitID = 1
)

// Connection value limits
const (
	MaxPort   = 65535
	MaxUnitID = 255
)

// Channels is the number of logical DO channels. Index 0 of the
// per-channel tables is reserved, so tables have Channels+1 entries.
const Channels = 2

// Unmapped marks a channel that has no coil assigned.
const Unmapped = -1

// Settings represents the whole settings file.
// Index 0 of Ch2Coil and Invert is unused; indices 1 and 2 are DO1 and DO2.
type Settings struct {
	IP      string `yaml:"ip" json:"ip" toml:"ip"`
	Port    int    `yaml:"port" json:"port" toml:"port"`
	UnitID  int    `yaml:"unitId" json:"unitId" toml:"unitId"`
	Ch2Coil []int  `yaml:"ch2Coil" json:"ch2Coil" toml:"ch2Coil"`
	Invert  []bool `yaml:"invert" json:"invert" toml:"invert"`
}

// Default returns the settings written on first start.
func Default() *Settings {
	return &Settings{
		IP:      DefaultIP,
		Port:    DefaultPort,
		UnitID:  DefaultUnitID,
		Ch2Coil: defaultCh2Coil(),
		Invert:  defaultInvert(),
	}
}

func defaultCh2Coil() []int {
	return []int{Unmapped, 0, 1}
}

func defaultInvert() []bool {
	return []bool{false, false, false}
}

// Clone returns a deep copy so callers never share the tables.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Ch2Coil = append([]int(nil), s.Ch2Coil...)
	c.Invert = append([]bool(nil), s.Invert...)
	return &c
}

// Normalize backfills short per-channel tables with the defaults for the
// missing indices. Entries that are present are kept.
func (s *Settings) Normalize() {
	coils := defaultCh2Coil()
	for i := len(s.Ch2Coil); i < len(coils); i++ {
		s.Ch2Coil = append(s.Ch2Coil, coils[i])
	}
	inv := defaultInvert()
	for i := len(s.Invert); i < len(inv); i++ {
		s.Invert = append(s.Invert, inv[i])
	}
}

// Validate checks the connection values fit the protocol: port 1-65535
// and unit id 0-255.
func (s *Settings) Validate() error {
	if s.Port < 1 || s.Port > MaxPort {
		return fmt.Errorf("port must be 1-%d, got %d", MaxPort, s.Port)
	}
	if s.UnitID < 0 || s.UnitID > MaxUnitID {
		return fmt.Errorf("unit id must be 0-%d, got %d", MaxUnitID, s.UnitID)
	}
	return nil
}

// Address returns host:port of the device.
func (s *Settings) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Coil returns the coil mapped to a channel, or Unmapped.
func (s *Settings) Coil(channel int) int {
	if channel < 0 || channel >= len(s.Ch2Coil) {
		return Unmapped
	}
	return s.Ch2Coil[channel]
}

// Inverted reports the polarity flag of a channel.
func (s *Settings) Inverted(channel int) bool {
	if channel < 0 || channel >= len(s.Invert) {
		return false
	}
	return s.Invert[channel]
}
