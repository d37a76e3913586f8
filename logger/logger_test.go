package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewWriterLevels(t *testing.T) {
	var buf bytes.Buffer

	l := NewWriter("warn", &buf)
	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("Expected debug/info to be suppressed at warn level, got %q", out)
	}

	if !strings.Contains(out, "kept") {
		t.Errorf("Expected warn message in output, got %q", out)
	}
}

func TestErrorAcceptsError(t *testing.T) {
	var buf bytes.Buffer

	l := NewWriter("error", &buf)
	l.Error(errors.New("boom"))

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected error message in output, got %q", buf.String())
	}
}

func TestFormattingArgs(t *testing.T) {
	var buf bytes.Buffer

	l := NewWriter("info", &buf)
	l.Info("connected to %s:%d", "broker", 9092)

	if !strings.Contains(buf.String(), "connected to broker:9092") {
		t.Errorf("Expected formatted message, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing happens")
	l.Error("still nothing")
}
