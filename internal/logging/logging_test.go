package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger = NewComponentLogger(logger, "matcher")
	logger.Info("classification finished", Int("complete", 12), String("path", "/roms/a b.bin"))

	line := buf.String()
	if !strings.Contains(line, "INFO matcher: classification finished") {
		t.Fatalf("line = %q", line)
	}
	if !strings.Contains(line, "complete=12") {
		t.Fatalf("line = %q", line)
	}
	if !strings.Contains(line, `path="/roms/a b.bin"`) {
		t.Fatalf("value with spaces must be quoted: %q", line)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "WARN visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestConsoleHandlerErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger.Warn("action failed", Error(errors.New("no such file")))

	if !strings.Contains(buf.String(), `error="no such file"`) {
		t.Fatalf("line = %q", buf.String())
	}
}

func TestJSONHandlerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo))

	logger.Info("scan complete", Int("files", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "scan complete" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("ts missing")
	}
	if record["files"] != float64(3) {
		t.Fatalf("files = %v", record["files"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewDuplicatesToLogFile(t *testing.T) {
	dir := t.TempDir()
	out, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatalf("create output: %v", err)
	}
	defer out.Close()

	logFile := filepath.Join(dir, "logs", "run.log")
	logger, err := New(Options{Format: "json", LogFile: logFile, Output: out})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hello from the run")

	for _, path := range []string{out.Name(), logFile} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !strings.Contains(string(data), "hello from the run") {
			t.Fatalf("%s missing log line: %q", path, data)
		}
	}
}

func TestNopLoggerIsSilentAndSafe(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing happens", Error(nil))

	if got := NewComponentLogger(nil, "scanner"); got == nil {
		t.Fatal("nil base must yield a usable logger")
	}
}
