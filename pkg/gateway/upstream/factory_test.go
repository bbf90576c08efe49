package upstream

import (
	"testing"

	"github.com/voxbridge/voxbridge/pkg/core"
)

func TestNewResolvesCanonicalNames(t *testing.T) {
	f := Factory{OpenAIAPIKey: "test-key", GeminiAPIKey: "test-key"}

	tests := []struct {
		input string
		want  string
	}{
		{"dummy", "dummy"},
		{"test", "dummy"},
		{"DUMMY", "dummy"},
		{"  dummy  ", "dummy"},
		{"", "dummy"},
		{"openai", "openai"},
		{"OpenAI", "openai"},
		{"offline", "offline"},
		{"local", "offline"},
		{" LOCAL ", "offline"},
		{"gemini", "gemini"},
	}
	for _, tt := range tests {
		t.Run("name="+tt.input, func(t *testing.T) {
			p, err := f.New(t.Context(), tt.input, "")
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.input, err)
			}
			if p.Name() != tt.want {
				t.Fatalf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestNewRejectsUnknownProviders(t *testing.T) {
	f := Factory{}
	for _, name := range []string{"llama", "anthropic", "open ai", "dummy2"} {
		if _, err := f.New(t.Context(), name, ""); !core.IsType(err, core.ErrUnsupportedProvider) {
			t.Fatalf("New(%q) error = %v, want unsupported_provider_error", name, err)
		}
	}
}

func TestNewSurfacesMissingKeysAtConstruction(t *testing.T) {
	f := Factory{}
	if _, err := f.New(t.Context(), "openai", ""); !core.IsType(err, core.ErrConfiguration) {
		t.Fatalf("New(openai) without key error = %v, want configuration_error", err)
	}
	if _, err := f.New(t.Context(), "gemini", ""); !core.IsType(err, core.ErrConfiguration) {
		t.Fatalf("New(gemini) without key error = %v, want configuration_error", err)
	}
}

func TestNewIsPure(t *testing.T) {
	f := Factory{OpenAIAPIKey: "test-key"}
	a, err := f.New(t.Context(), "openai", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := f.New(t.Context(), "openai", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Name() != b.Name() {
		t.Fatalf("repeated selection differs: %q vs %q", a.Name(), b.Name())
	}
}
