package ingest

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	r := execRunner{logger: slog.Default()}
	stdout, stderr, err := r.Run(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(string(stdout)) != "hello" {
		t.Errorf("stdout = %q", stdout)
	}
	if len(stderr) != 0 {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExecRunnerReportsFailure(t *testing.T) {
	r := execRunner{logger: slog.Default()}
	_, _, err := r.Run(context.Background(), "definitely-not-a-binary-on-this-host")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	got := truncate(strings.Repeat("x", 20), 5)
	if got != "xxxxx...(truncated)" {
		t.Errorf("truncate = %q", got)
	}
}
