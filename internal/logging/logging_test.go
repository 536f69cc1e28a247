package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zapcore.Level
		wantOK bool
	}{
		{"", DefaultLevel, true},
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.InfoLevel, true},
		{"ERROR", zapcore.ErrorLevel, true},
		{"chatty", DefaultLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("path", "/tmp/x"))
	logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "/tmp/x") {
		t.Errorf("warn message missing:\n%s", out)
	}
}

func TestNewReportsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	New("chatty", &buf).Sync()
	if !strings.Contains(buf.String(), "unknown log level") {
		t.Errorf("expected a warning about the level, got:\n%s", buf.String())
	}
}
