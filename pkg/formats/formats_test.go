package formats

import (
	"strings"
	"testing"
)

func TestDefault_StandardCheckers(t *testing.T) {
	reg := Default()

	tests := []struct {
		format string
		value  string
		ok     bool
	}{
		{"uri", "https://runbook.example.com/scaling", true},
		{"uri", "./relative/path", false},
		{"email", "oncall@example.com", true},
		{"email", "not-an-email", false},
		{"hostname", "metrics.example.com", true},
		{"ipv4", "10.1.2.3", true},
		{"ipv4", "300.1.2.3", false},
		{"date-time", "2019-06-01T12:00:00Z", true},
		{"date-time", "yesterday", false},
		{"uuid", "9e1060d1-6cf8-4c4f-9f62-5bb45cd31337", true},
		{"regex", "^cluster-[a-z]+$", true},
		{"regex", "(unclosed", false},
	}

	for _, tt := range tests {
		if got := reg.Check(tt.format, tt.value); got != tt.ok {
			t.Errorf("Check(%q, %q) = %v, want %v", tt.format, tt.value, got, tt.ok)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := New()
	if reg.Has("team-name") {
		t.Fatal("Expected an empty registry")
	}

	reg.Register("team-name", teamNameChecker{})
	if !reg.Has("team-name") {
		t.Fatal("Expected the checker to be registered")
	}
	if !reg.Check("team-name", "compute-infra") {
		t.Error("Expected compute-infra to pass")
	}
	if reg.Check("team-name", "Compute Infra") {
		t.Error("Expected a name with spaces to fail")
	}
}

func TestRegistry_CheckUnknownFormat(t *testing.T) {
	reg := New()
	if reg.Check("nope", "anything") {
		t.Error("Expected an unregistered format to fail the check")
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := Default()
	names := reg.Names()
	if len(names) == 0 {
		t.Fatal("Expected the default registry to carry checkers")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Expected sorted names, got %v", names)
		}
	}
}

type teamNameChecker struct{}

func (teamNameChecker) IsFormat(input any) bool {
	s, ok := input.(string)
	if !ok || s == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}
