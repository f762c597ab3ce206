package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	result := String()

	for _, want := range []string{"mcp-command-line version", Version, "built " + BuildTime} {
		if !strings.Contains(result, want) {
			t.Errorf("String() = %q, want it to contain %q", result, want)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	if Version != "dev" {
		t.Errorf("expected default Version 'dev', got %q", Version)
	}
	if BuildTime != "unknown" {
		t.Errorf("expected default BuildTime 'unknown', got %q", BuildTime)
	}
}
