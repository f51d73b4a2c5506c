package command_service

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected untouched string, got %q", got)
	}
	if got := Truncate("0123456789abc", 10); got != "0123456789...(truncated)" {
		t.Errorf("Unexpected truncation: %q", got)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := NewExecRunner(nil)

	out, _, err := r.Run(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("Expected stdout 'hello', got %q", string(out))
	}

	_, errb, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("Expected error from failing command")
	}
	if !strings.Contains(string(errb), "oops") {
		t.Errorf("Expected stderr to be captured, got %q", string(errb))
	}
}
