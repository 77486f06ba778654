package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a no-op when no level is configured")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer SetLogger(nil)

	core := GetLogger().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHelpersEmitStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogCoilWrite("127.0.0.1:502", 1, 3, true)
	LogRetry(1, 3, errors.New("broken pipe"))

	if logs.Len() != 2 {
		t.Fatalf("expected 2 log entries, got %d", logs.Len())
	}

	write := logs.All()[0].ContextMap()
	if write["coil"] != uint16(3) || write["value"] != true {
		t.Errorf("unexpected coil write fields: %v", write)
	}

	retry := logs.All()[1]
	if retry.Level != zapcore.WarnLevel {
		t.Errorf("retry level = %v, want warn", retry.Level)
	}
}

func TestFormatBits(t *testing.T) {
	got := FormatBits([]bool{true, false, false, true})
	if got != "1001" {
		t.Errorf("FormatBits() = %q, want %q", got, "1001")
	}
	if FormatBits(nil) != "" {
		t.Error("FormatBits(nil) should be empty")
	}
}

func TestWireLogger(t *testing.T) {
	SetLogger(zap.NewNop())
	if WireLogger() != nil {
		t.Error("WireLogger() should be nil when debug is disabled")
	}

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	wl := WireLogger()
	if wl == nil {
		t.Fatal("WireLogger() should not be nil at debug level")
	}
	wl.Printf("modbus: sending % x", []byte{0, 1})

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.LoggerName != "wire" || entry.Level != zapcore.DebugLevel {
		t.Errorf("entry = %+v", entry.Entry)
	}
}
