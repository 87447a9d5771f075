package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	ringbuf "github.com/luhtfiimanal/go-ringbuf"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RINGCTL_FILE", "")
	t.Setenv("RINGCTL_LOG_LEVEL", "")
	color.NoColor = true
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("ringctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestPushPeekPopSession(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")

	mustRun(t, "create", "-f", file, "-c", "3", "-r", "8")
	mustRun(t, "push", "-f", file, "alpha", "beta", "gamma", "delta")

	out := mustRun(t, "peek", "-f", file, "-n", "5")
	if out != "delta\ngamma\nbeta\n" {
		t.Fatalf("peek output %q", out)
	}

	out = mustRun(t, "pop", "-f", file)
	if out != "delta\n" {
		t.Fatalf("pop output %q", out)
	}

	out = mustRun(t, "info", "-f", file)
	for _, want := range []string{"capacity: 3", "record length: 8", "count: 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output %q lacks %q", out, want)
		}
	}

	out = mustRun(t, "delete", "-f", file, "-n", "5")
	if !strings.Contains(out, "deleted 2, count 0") {
		t.Fatalf("delete output %q", out)
	}
	out = mustRun(t, "pop", "-f", file)
	if !strings.Contains(out, "(empty)") {
		t.Fatalf("pop on empty output %q", out)
	}
}

func TestPushTooLong(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")
	mustRun(t, "create", "-f", file, "-c", "2", "-r", "4")
	_, err := run(t, "push", "-f", file, "toolong")
	if !errors.Is(err, ringbuf.ErrRecordSizeMismatch) {
		t.Fatalf("expected ErrRecordSizeMismatch, got %v", err)
	}
}

func TestHexRecords(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")
	mustRun(t, "create", "-f", file, "-c", "4", "-r", "3")
	mustRun(t, "push", "-f", file, "--hex", "0a0b0c")
	out := mustRun(t, "peek", "-f", file, "--hex")
	if out != "0a0b0c\n" {
		t.Fatalf("peek output %q", out)
	}
	if _, err := run(t, "push", "-f", file, "--hex", "zz"); err == nil {
		t.Fatalf("expected hex decode error")
	}
}

func TestResizeCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")
	mustRun(t, "create", "-f", file, "-c", "5", "-r", "2")
	mustRun(t, "push", "-f", file, "a", "b", "c", "d")

	out := mustRun(t, "resize", "-f", file, "2")
	if !strings.Contains(out, "capacity 2, count 2") || !strings.Contains(out, "dropped 2") {
		t.Fatalf("resize output %q", out)
	}
	out = mustRun(t, "peek", "-f", file, "-n", "9")
	if out != "d\nc\n" {
		t.Fatalf("peek after resize %q", out)
	}
	if _, err := run(t, "resize", "-f", file, "-3"); err == nil {
		t.Fatalf("expected error for negative capacity")
	}
}

func TestReopenWithoutCapacityNeedsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing.dat")
	_, err := run(t, "info", "-f", file)
	if !errors.Is(err, ringbuf.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestOpenOrCreateReportsReinitialization(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")
	mustRun(t, "create", "-f", file, "-c", "4", "-r", "4")
	mustRun(t, "push", "-f", file, "x")

	out := mustRun(t, "info", "-f", file, "-c", "6", "-r", "4", "--log-level", "error")
	if !strings.Contains(out, "reinitialized") || !strings.Contains(out, "count: 0") {
		t.Fatalf("info output %q", out)
	}
}

func TestAuditLogAndTail(t *testing.T) {
	file := filepath.Join(t.TempDir(), "audit.dat")
	mustRun(t, "create", "-f", file, "-c", "2", "-r", "64")
	mustRun(t, "log", "-f", file, "first")
	mustRun(t, "log", "-f", file, "--level", "warn", "second")
	mustRun(t, "log", "-f", file, "third")

	out := mustRun(t, "tail", "-f", file)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("tail output %q", out)
	}
	if !strings.HasSuffix(lines[0], " third") || !strings.HasSuffix(lines[1], " second") {
		t.Fatalf("tail order %q", out)
	}
	if !strings.Contains(lines[1], "warning") {
		t.Fatalf("tail level %q", lines[1])
	}

	if _, err := run(t, "log", "-f", file, "--level", "loud", "x"); err == nil {
		t.Fatalf("expected bad level error")
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ring.dat")
	cfgPath := filepath.Join(dir, "ringctl.yaml")
	body := "file: " + file + "\ncapacity: 3\nrecord_length: 5\nsync: false\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	mustRun(t, "push", "--config", cfgPath, "hello")
	out := mustRun(t, "peek", "--config", cfgPath)
	if out != "hello\n" {
		t.Fatalf("peek output %q", out)
	}
	fi, err := os.Stat(file)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() != 20+3*5 {
		t.Fatalf("file size %d", fi.Size())
	}
}

func TestCreateRequiresCapacity(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ring.dat")
	if _, err := run(t, "create", "-f", file); err == nil {
		t.Fatalf("expected error without capacity")
	}
}
