package logger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize console logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithJSON(), WithOutput("stderr")); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	Get().Info(context.Background(), "test message", String("k", "v"))
	Named("test").Debug(context.Background(), "hidden at info")
}

func TestLoggerFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core)).Named("ai")

	ctx := context.Background()
	l.Warn(ctx, "model output rejected",
		String("op", "evaluate-answer"),
		Int("attempt", 1),
		Bool("json", true),
		Error(errors.New("bad score")),
	)

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "ai" {
		t.Fatalf("expected logger name ai, got %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["op"] != "evaluate-answer" {
		t.Fatalf("unexpected op field: %v", fields["op"])
	}
	if fields["error"] != "bad score" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}
	source, _ := fields["source"].(string)
	if !strings.Contains(source, "logger_test.go") {
		t.Fatalf("expected caller source, got %q", source)
	}
}

func TestSetLevelString(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Fatalf("level %q: %v", level, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNopBeforeInit(t *testing.T) {
	mu.Lock()
	saved := global
	global = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		global = saved
		mu.Unlock()
	}()

	Get().Info(context.Background(), "discarded")
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abcdefgh", 3); got != "abc"+truncateSuffix {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Fatalf("unexpected %q", got)
	}
}
