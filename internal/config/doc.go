// Package config provides the settings store for docon.
//
// Settings hold the device connection (ip, port, unit id) and the two
// per-channel tables: the coil each logical DO channel drives and whether
// the channel is inverted. The store is the configuration provider of the
// control service: settings are loaded once at start-up and saved after
// every change.
//
// # File Format
//
// The codec follows the file extension:
//   - .yaml / .yml (default): gopkg.in/yaml.v3
//   - .json: the format of earlier releases (config.json next to the binary)
//   - .toml: github.com/BurntSushi/toml
//
// All formats use the same keys:
//
//	ip: 192.168.1.5
//	port: 502
//	unitId: 1
//	ch2Coil: [-1, 0, 1]
//	invert: [false, false, false]
//
// # Configuration File Location
//
// Unless --config is given the file lives in the platform config directory:
//   - Linux: $XDG_CONFIG_HOME/docon/config.yaml or $HOME/.config/docon/config.yaml
//   - macOS: $HOME/.config/docon/config.yaml
//   - Windows: %LOCALAPPDATA%\docon\config.yaml
//
// # Failure Handling
//
// Load never fails: a missing or unparsable file is replaced by the
// defaults. Save returns a fault.ErrTypePersistence error after logging it;
// a control action that already reached the device is not undone because
// its settings could not be written.
package config
