package logs

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logging")
	var terminal bytes.Buffer

	SetLevel(slog.LevelInfo)
	logger, closeLog, err := New(Options{Terminal: &terminal, Dir: dir})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("document written", "name", "settings.json")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "document written") || !strings.Contains(content, "name=settings.json") {
		t.Fatalf("unexpected log file content %q", content)
	}
	if strings.Contains(content, "hidden") {
		t.Fatalf("debug record should be filtered at info level")
	}
	if !isSystemdService() && !strings.Contains(terminal.String(), "document written") {
		t.Fatalf("expected terminal output, got %q", terminal.String())
	}
}

func TestSetLevelAppliesToExistingLoggers(t *testing.T) {
	var terminal bytes.Buffer
	logger, _, err := New(Options{Terminal: &terminal})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if isSystemdService() {
		t.Skip("terminal handler disabled under systemd")
	}

	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)
	logger.Debug("verbose detail")

	if !strings.Contains(terminal.String(), "verbose detail") {
		t.Fatalf("expected debug output, got %q", terminal.String())
	}
}

func TestNewFailsOnUnusableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := New(Options{Dir: filepath.Join(file, "logging")}); err == nil {
		t.Fatalf("expected error for directory below a file")
	}
}

func TestToJournalKey(t *testing.T) {
	cases := map[string]string{
		"name":        "NAME",
		"snapshot_id": "SNAPSHOT_ID",
		"doc.path":    "DOC_PATH",
		"pass-2":      "PASS_2",
	}
	for in, want := range cases {
		if got := toJournalKey(in); got != want {
			t.Fatalf("toJournalKey(%q) = %q, want %q", in, got, want)
		}
	}
}
