package gpath

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("mesh flush", "vertices", 12)
	if !strings.Contains(buf.String(), "mesh flush") || !strings.Contains(buf.String(), "vertices=12") {
		t.Errorf("log output = %q", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("output after SetLogger(nil) = %q", buf.String())
	}
}
