package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func newBufferLogger(level slog.Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return New(h), &buf
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		logFunc func(Logger)
		want    bool
	}{
		{"debug at debug", slog.LevelDebug, func(l Logger) { l.Debug("chose version") }, true},
		{"debug at warn", slog.LevelWarn, func(l Logger) { l.Debug("chose version") }, false},
		{"info at info", slog.LevelInfo, func(l Logger) { l.Info("chose version") }, true},
		{"info at warn", slog.LevelWarn, func(l Logger) { l.Info("chose version") }, false},
		{"warn at warn", slog.LevelWarn, func(l Logger) { l.Warn("chose version") }, true},
		{"error at error", slog.LevelError, func(l Logger) { l.Error("chose version") }, true},
		{"warn at error", slog.LevelError, func(l Logger) { l.Warn("chose version") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(tt.level)
			tt.logFunc(logger)
			if got := strings.Contains(buf.String(), "chose version"); got != tt.want {
				t.Errorf("logged = %v, want %v (output: %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLoggerWith(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	logger.With("package", "dune").With("range", "^3.0.0").Debug("resolving", "candidates", 4)

	out := buf.String()
	for _, want := range []string{"package=dune", "range=^3.0.0", "candidates=4", "resolving"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewCLIDropsTime(t *testing.T) {
	var buf bytes.Buffer
	l := NewCLI(&buf, slog.LevelInfo)
	l.Info("loaded overrides", "count", 2)
	l.Debug("hidden")

	out := buf.String()
	if strings.Contains(out, "time=") {
		t.Errorf("output %q has a timestamp", out)
	}
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "count=2") {
		t.Errorf("output %q missing level or attrs", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry logged at info level: %q", out)
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	if _, ok := l.With("k", "v").(noopLogger); !ok {
		t.Error("With on noop logger should return a noop logger")
	}
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	if _, ok := Default().(noopLogger); !ok {
		t.Fatalf("Default() before SetDefault = %T, want noopLogger", Default())
	}

	logger, buf := newBufferLogger(slog.LevelInfo)
	SetDefault(logger)
	Default().Info("repository loaded")
	if !strings.Contains(buf.String(), "repository loaded") {
		t.Errorf("Default() did not use installed logger, output: %q", buf.String())
	}
}

func TestDefaultLoggerConcurrency(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetDefault(NewNoop())
		}()
		go func() {
			defer wg.Done()
			Default().Debug("concurrent")
		}()
	}
	wg.Wait()
}
