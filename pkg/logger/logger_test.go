package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/frontier/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected global level debug, got %v", zerolog.GlobalLevel())
	}
}

func TestWithFieldsChaining(t *testing.T) {
	log := NewNop()

	derived := log.
		WithField("symbol", "VOO").
		WithFields(map[string]interface{}{"paths": 1000}).
		WithError(errors.New("test error"))

	if derived == nil {
		t.Fatal("derived logger is nil")
	}
	if derived == log {
		t.Error("With* must return a new logger")
	}

	// Must not panic on a nop logger.
	derived.Debug("debug")
	derived.Info("info")
	derived.Warn("warn")
	derived.Error("error")
	derived.Infof("formatted %d", 1)
}
