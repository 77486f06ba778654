package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/muurk/docon/internal/fault"
)

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("GetConfigDir() = %q, should end with %q", dir, appName)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	want := filepath.Join(xdg, appName, configFile)
	if path != want {
		t.Errorf("GetConfigPath() = %q, want %q", path, want)
	}
}

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	store := NewStore(path)

	got := store.Load()
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("Load() = %+v, want defaults", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
	if !strings.Contains(string(data), "ip: 192.168.1.5") {
		t.Errorf("persisted file missing ip:\n%s", data)
	}
	if !strings.HasPrefix(string(data), "# docon settings") {
		t.Errorf("persisted yaml should start with the header comment:\n%s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoad_CorruptFileReplacedByDefaults(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "config.yaml", "ip: [unterminated\n"},
		{"json", "config.json", "{not json"},
		{"toml", "config.toml", "ip = = 1"},
		{"empty", "config.yaml", "   \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			store := NewStore(path)
			got := store.Load()
			if !reflect.DeepEqual(got, Default()) {
				t.Errorf("Load() = %+v, want defaults", got)
			}

			// The corrupt file has been overwritten and now loads cleanly
			again, err := store.read()
			if err != nil {
				t.Fatalf("rewritten file does not parse: %v", err)
			}
			if !reflect.DeepEqual(again, Default()) {
				t.Errorf("rewritten file = %+v, want defaults", again)
			}
		})
	}
}

func TestLoad_OutOfRangeReplacedByDefaults(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unit id 300", "config.json", `{"ip":"10.0.0.9","port":502,"unitId":300}`},
		{"unit id -1", "config.yaml", "ip: 10.0.0.9\nunitId: -1\n"},
		{"port 0", "config.yaml", "ip: 10.0.0.9\nport: 0\n"},
		{"port 70000", "config.toml", "ip = \"10.0.0.9\"\nport = 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			store := NewStore(path)
			got := store.Load()
			if !reflect.DeepEqual(got, Default()) {
				t.Errorf("Load() = %+v, want defaults", got)
			}

			again, err := store.read()
			if err != nil {
				t.Fatalf("rewritten file does not parse: %v", err)
			}
			if !reflect.DeepEqual(again, Default()) {
				t.Errorf("rewritten file = %+v, want defaults", again)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}

	s.Port, s.UnitID = MaxPort, 0
	if err := s.Validate(); err != nil {
		t.Errorf("limits rejected: %v", err)
	}

	s.UnitID = MaxUnitID + 1
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "unit id") {
		t.Errorf("Validate() = %v, want unit id error", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config"+ext)
			store := NewStore(path)

			want := &Settings{
				IP:      "10.1.2.3",
				Port:    1502,
				UnitID:  7,
				Ch2Coil: []int{-1, 5, -1},
				Invert:  []bool{false, true, false},
			}
			if err := store.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got := NewStore(path).Load()
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestFormatByExtension(t *testing.T) {
	tests := map[string]string{
		"a.yaml": "yaml",
		"a.YML":  "yaml",
		"a.json": "json",
		"a.toml": "toml",
		"a":      "yaml",
		"a.conf": "yaml",
	}
	for path, want := range tests {
		if got := NewStore(path).Format(); got != want {
			t.Errorf("NewStore(%q).Format() = %q, want %q", path, got, want)
		}
	}
}

func TestLoad_LegacyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	legacy := `{"ip":"192.168.0.50","port":502,"unitId":3,"ch2Coil":[-1,2,3],"invert":[false,false,true]}`
	if err := os.WriteFile(path, []byte(legacy), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()
	if got.IP != "192.168.0.50" || got.UnitID != 3 {
		t.Errorf("Load() = %+v", got)
	}
	if got.Coil(1) != 2 || got.Coil(2) != 3 {
		t.Errorf("coils = %v", got.Ch2Coil)
	}
	if !got.Inverted(2) || got.Inverted(1) {
		t.Errorf("invert = %v", got.Invert)
	}
}

func TestLoad_MissingKeysKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ip: 10.0.0.2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()
	if got.IP != "10.0.0.2" {
		t.Errorf("IP = %q", got.IP)
	}
	if got.Port != DefaultPort || got.UnitID != DefaultUnitID {
		t.Errorf("port/unit = %d/%d, want defaults", got.Port, got.UnitID)
	}
	if !reflect.DeepEqual(got.Ch2Coil, []int{-1, 0, 1}) {
		t.Errorf("Ch2Coil = %v", got.Ch2Coil)
	}
}

func TestLoad_ShortTablesBackfilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"ip":"10.0.0.2","port":502,"unitId":1,"ch2Coil":[-1,4],"invert":[]}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()
	if !reflect.DeepEqual(got.Ch2Coil, []int{-1, 4, 1}) {
		t.Errorf("Ch2Coil = %v, want [-1 4 1]", got.Ch2Coil)
	}
	if !reflect.DeepEqual(got.Invert, []bool{false, false, false}) {
		t.Errorf("Invert = %v", got.Invert)
	}
}

func TestSave_FailureIsPersistenceFault(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	// Parent "directory" is a regular file, so MkdirAll fails
	store := NewStore(filepath.Join(blocker, "config.yaml"))
	err := store.Save(Default())
	if err == nil {
		t.Fatal("Save() should fail")
	}
	if !fault.IsPersistenceError(err) {
		t.Errorf("Save() error = %v, want persistence fault", err)
	}

	// Load still returns usable defaults
	if got := store.Load(); !reflect.DeepEqual(got, Default()) {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestSave_NoTempFileLeft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := NewStore(path).Save(Default()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save")
	}
}
