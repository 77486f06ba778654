package control

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/logging"
	"github.com/muurk/docon/internal/transport"
)

// DefaultReadbackDelay is the pause between the last write and the
// snapshot read that follows it.
const DefaultReadbackDelay = 50 * time.Millisecond

// Link is the connection the service drives. *transport.Session implements it.
type Link interface {
	EnsureConnected() error
	Reconnect() error
	WriteSingleCoil(address uint16, value bool) error
	ReadCoils(start, count uint16) ([]bool, error)
	SetTarget(target transport.Target)
}

// SettingsProvider loads and saves settings. *config.Store implements it.
type SettingsProvider interface {
	Load() *config.Settings
	Save(settings *config.Settings) error
}

// Service translates logical channel commands into coil operations.
// Commands run one at a time; a second caller waits until the first
// command, pulse hold included, has finished.
type Service struct {
	// ReadbackDelay precedes every post-write snapshot
	ReadbackDelay time.Duration

	// Sleep is used for pulse holds and the read-back delay
	Sleep func(time.Duration)

	link  Link
	exec  *transport.Executor
	store SettingsProvider

	cmdMu sync.Mutex // serializes commands

	mu       sync.RWMutex // guards settings
	settings *config.Settings
}

// NewService loads the settings and points link at the configured device.
func NewService(link Link, store SettingsProvider) *Service {
	settings := store.Load()
	target, err := TargetFor(settings)
	if err != nil {
		logging.Warn("Connection settings out of range, using defaults", zap.Error(err))
		settings.IP = config.DefaultIP
		settings.Port = config.DefaultPort
		settings.UnitID = config.DefaultUnitID
		target, _ = TargetFor(settings)
	}
	link.SetTarget(target)

	return &Service{
		ReadbackDelay: DefaultReadbackDelay,
		Sleep:         time.Sleep,
		link:          link,
		exec:          transport.NewExecutor(link),
		store:         store,
		settings:      settings,
	}
}

// Executor returns the retry executor, for tuning its policy.
func (s *Service) Executor() *transport.Executor {
	return s.exec
}

// TargetFor builds a transport target from settings.
// Out-of-range port or unit id values are a validation fault.
func TargetFor(settings *config.Settings) (transport.Target, error) {
	if err := ValidatePort(settings.Port); err != nil {
		return transport.Target{}, err
	}
	if err := ValidateUnitID(settings.UnitID); err != nil {
		return transport.Target{}, err
	}
	return transport.Target{
		Host:   settings.IP,
		Port:   settings.Port,
		UnitID: byte(settings.UnitID),
	}, nil
}

// ControlDo switches a channel on or off and reads back the coil snapshot.
func (s *Service) ControlDo(req ControlRequest) (*ControlResult, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	coil, inverted, err := s.resolve(req.Channel)
	if err != nil {
		return nil, err
	}
	physical := physicalValue(req.On, inverted)

	result := &ControlResult{
		Channel:  req.Channel,
		Coil:     coil,
		On:       req.On,
		Physical: physical,
	}

	out := s.exec.Run(func() error {
		if err := s.link.WriteSingleCoil(uint16(coil), physical); err != nil {
			return err
		}
		snapshot, err := s.readback()
		if err != nil {
			return err
		}
		result.Snapshot = snapshot
		return nil
	})
	result.Attempts = out.Attempts
	if out.Err != nil {
		return nil, out.Err
	}

	logging.Info("DO switched",
		zap.Int("channel", req.Channel),
		zap.Bool("on", req.On),
		zap.Bool("physical", physical),
		zap.String("snapshot", logging.FormatBits(result.Snapshot)),
	)
	return result, nil
}

// PulseDo writes the channel's on value, holds it for DurationMs, then
// writes the off value. A fault anywhere in the sequence repeats the whole
// pulse from the on write, so a retried pulse may drive the output longer
// than requested.
func (s *Service) PulseDo(req PulseRequest) (*PulseResult, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := ValidateChannel(req.Channel); err != nil {
		return nil, err
	}
	if err := ValidateDuration(req.DurationMs); err != nil {
		return nil, err
	}
	coil, inverted, err := s.resolve(req.Channel)
	if err != nil {
		return nil, err
	}

	onValue := physicalValue(true, inverted)
	hold := time.Duration(req.DurationMs) * time.Millisecond

	result := &PulseResult{
		Channel:    req.Channel,
		Coil:       coil,
		DurationMs: req.DurationMs,
		OnValue:    onValue,
	}

	out := s.exec.Run(func() error {
		if err := s.link.WriteSingleCoil(uint16(coil), onValue); err != nil {
			return err
		}
		s.Sleep(hold)
		if err := s.link.WriteSingleCoil(uint16(coil), !onValue); err != nil {
			return err
		}
		snapshot, err := s.readback()
		if err != nil {
			return err
		}
		result.Snapshot = snapshot
		return nil
	})
	result.Attempts = out.Attempts
	if out.Err != nil {
		return nil, out.Err
	}

	if out.Attempts > 1 {
		logging.Warn("Pulse repeated after transport fault",
			zap.Int("channel", req.Channel),
			zap.Int("attempts", out.Attempts),
		)
	}
	logging.Info("DO pulsed",
		zap.Int("channel", req.Channel),
		zap.Int("duration_ms", req.DurationMs),
		zap.String("snapshot", logging.FormatBits(result.Snapshot)),
	)
	return result, nil
}

// ToggleChannelInvert flips the polarity of a channel and saves the settings.
// The device is not touched.
func (s *Service) ToggleChannelInvert(channel int) (*InvertResult, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := ValidateChannel(channel); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.settings.Invert[channel] = !s.settings.Invert[channel]
	inverted := s.settings.Invert[channel]
	snapshot := s.settings.Clone()
	s.mu.Unlock()

	logging.Info("Polarity changed", zap.Int("channel", channel), zap.Bool("inverted", inverted))
	return &InvertResult{
		Channel:  channel,
		Inverted: inverted,
		Persist:  s.store.Save(snapshot),
	}, nil
}

// SetChannelMapping assigns a coil to a channel and saves the settings.
// The device is not touched.
func (s *Service) SetChannelMapping(req MappingRequest) (*MappingResult, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := ValidateChannel(req.Channel); err != nil {
		return nil, err
	}
	if err := ValidateCoil(req.Coil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.settings.Ch2Coil[req.Channel]
	s.settings.Ch2Coil[req.Channel] = req.Coil
	snapshot := s.settings.Clone()
	s.mu.Unlock()

	logging.Info("Mapping changed",
		zap.Int("channel", req.Channel),
		zap.Int("coil", req.Coil),
		zap.Int("previous", previous),
	)
	return &MappingResult{
		Channel:  req.Channel,
		Coil:     req.Coil,
		Previous: previous,
		Persist:  s.store.Save(snapshot),
	}, nil
}

// UpdateConnectionConfig merges the present fields into the connection
// settings, saves them and reconnects to the new target.
// When the reconnect fails the result is still returned together with the
// connection fault; the new settings stay in effect.
func (s *Service) UpdateConnectionConfig(req ConnectionRequest) (*ConnectionResult, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	// An empty ip counts as not given
	var ip string
	if req.IP != nil {
		ip = strings.TrimSpace(*req.IP)
		if ip == "" {
			req.IP = nil
		} else if err := ValidateHost(ip); err != nil {
			return nil, err
		}
	}
	if req.Port != nil {
		if err := ValidatePort(*req.Port); err != nil {
			return nil, err
		}
	}
	if req.UnitID != nil {
		if err := ValidateUnitID(*req.UnitID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if req.IP != nil {
		s.settings.IP = ip
	}
	if req.Port != nil {
		s.settings.Port = *req.Port
	}
	if req.UnitID != nil {
		s.settings.UnitID = *req.UnitID
	}
	snapshot := s.settings.Clone()
	s.mu.Unlock()

	result := &ConnectionResult{
		IP:      snapshot.IP,
		Port:    snapshot.Port,
		UnitID:  snapshot.UnitID,
		Persist: s.store.Save(snapshot),
	}

	logging.Info("Connection settings changed",
		zap.String("addr", snapshot.Address()),
		zap.Int("unit_id", snapshot.UnitID),
	)

	target, err := TargetFor(snapshot)
	if err != nil {
		return result, err
	}
	s.link.SetTarget(target)
	if err := s.link.Reconnect(); err != nil {
		return result, err
	}
	return result, nil
}

// GetDoStatus reads the coil snapshot. Values are raw physical bits.
func (s *Service) GetDoStatus() (*Status, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	var coils []bool
	err := s.exec.Execute(func() error {
		var err error
		coils, err = s.link.ReadCoils(0, SnapshotSize)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Status{
		Coils:    coils,
		Settings: s.GetConfig(),
	}, nil
}

// GetChannelStatus reads the coil mapped to one channel and reports its
// logical state.
func (s *Service) GetChannelStatus(channel int) (*ChannelStatus, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	coil, inverted, err := s.resolve(channel)
	if err != nil {
		return nil, err
	}

	var physical bool
	err = s.exec.Execute(func() error {
		values, err := s.link.ReadCoils(uint16(coil), 1)
		if err != nil {
			return err
		}
		physical = values[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChannelStatus{
		Channel:  channel,
		Coil:     coil,
		Inverted: inverted,
		Physical: physical,
		On:       physical != inverted,
	}, nil
}

// GetConfig returns a copy of the settings in effect. No I/O.
func (s *Service) GetConfig() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.settings.Clone()
}

// resolve validates the channel and returns its coil and polarity.
func (s *Service) resolve(channel int) (int, bool, error) {
	if err := ValidateChannel(channel); err != nil {
		return 0, false, err
	}

	s.mu.RLock()
	coil := s.settings.Coil(channel)
	inverted := s.settings.Inverted(channel)
	s.mu.RUnlock()

	if coil < 0 {
		return 0, false, fault.NewUnmappedChannelError(channel)
	}
	if err := ValidateCoil(coil); err != nil {
		return 0, false, err
	}
	return coil, inverted, nil
}

func (s *Service) readback() ([]bool, error) {
	if s.ReadbackDelay > 0 {
		s.Sleep(s.ReadbackDelay)
	}
	return s.link.ReadCoils(0, SnapshotSize)
}
