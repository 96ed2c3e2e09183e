package anyllm

import "testing"

func TestModelCapabilities(t *testing.T) {
	tests := []struct {
		model           string
		contextWindow   int
		maxOutputTokens int
	}{
		{"gpt-4o-mini", 128_000, 16_384},
		{"claude-3-5-sonnet-latest", 200_000, 8_192},
		{"gemini-1.5-pro", 2_097_152, 8_192},
		{"llama3.1", 128_000, 4_096},
	}
	for _, tt := range tests {
		caps := modelCapabilities(tt.model)
		if caps.ContextWindow != tt.contextWindow {
			t.Errorf("%s: ContextWindow = %d, want %d", tt.model, caps.ContextWindow, tt.contextWindow)
		}
		if caps.MaxOutputTokens != tt.maxOutputTokens {
			t.Errorf("%s: MaxOutputTokens = %d, want %d", tt.model, caps.MaxOutputTokens, tt.maxOutputTokens)
		}
	}
}

func TestCreateBackendUnsupported(t *testing.T) {
	if _, err := createBackend("not-a-provider"); err == nil {
		t.Fatal("expected error for unsupported provider name")
	}
}
