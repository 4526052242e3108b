package debuglog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel.String() = %q, want %q", got, test.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"off", LevelOff},
		{" off ", LevelOff},
		{"INVALID", LevelInfo},
		{"", LevelInfo},
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func TestSetupWithLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelInfo)
	}

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}

	logContent := string(content)
	if strings.Contains(logContent, "debug message") {
		t.Error("DEBUG message should not appear with INFO level")
	}
	for _, msg := range []string{"info message", "warn message", "error message"} {
		if !strings.Contains(logContent, msg) {
			t.Errorf("%q should appear with INFO level", msg)
		}
	}
}

func TestSetupWithLevelOff(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelOff)

	if GetLevel() != LevelOff {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelOff)
	}

	Debugf("debug message")
	Errorf("error message")

	if buf.Len() != 0 {
		t.Errorf("expected no output with LevelOff, got %q", buf.String())
	}
}

func TestFieldLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelDebug)
	defer SetOutput(&bytes.Buffer{}, LevelOff)

	logger := WithFields(map[string]interface{}{
		"component": "test",
		"count":     42,
	}).With("action", "testing")

	logger.Infof("test message with fields")
	WithError(errors.New("boom")).Warnf("something failed")

	out := buf.String()
	for _, want := range []string{
		"test message with fields",
		"component=test",
		"action=testing",
		"count=42",
		"error=boom",
		"level=warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestFieldLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelDebug)
	defer SetOutput(&bytes.Buffer{}, LevelOff)

	WithFields(map[string]interface{}{"uri": "/x"}).WithError(errors.New("kaput")).Errorf("request failed")

	out := buf.String()
	for _, want := range []string{"request failed", "uri=/x", "error=kaput", "level=error"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelDebug)
	defer SetOutput(&bytes.Buffer{}, LevelOff)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}

	Warnf("hidden")
	Errorf("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("WARN line written at ERROR level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("ERROR line missing at ERROR level")
	}
}
