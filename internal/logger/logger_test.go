package logger

import (
	"os"
	"testing"
)

func TestInitUsesLogLevelFromEnv(t *testing.T) {
	_ = os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")

	l, err := Init()
	if err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if l == nil {
		t.Fatalf("Init() returned nil logger")
	}
	if !l.Core().Enabled(-1) { // zapcore.DebugLevel
		t.Fatalf("expected debug level to be enabled")
	}
}

func TestInitFallsBackToInfoOnGarbage(t *testing.T) {
	_ = os.Setenv("LOG_LEVEL", "loudest")
	defer os.Unsetenv("LOG_LEVEL")

	l, err := Init()
	if err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if l.Core().Enabled(-1) {
		t.Fatalf("expected debug to be disabled at default level")
	}
}
