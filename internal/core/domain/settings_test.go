package domain

import (
	"errors"
	"testing"
)

func TestAIProviderConstants(t *testing.T) {
	if AIProviderOpenAI != "openai" {
		t.Errorf("expected openai, got %s", AIProviderOpenAI)
	}
	if AIProviderVertex != "vertex" {
		t.Errorf("expected vertex, got %s", AIProviderVertex)
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "empty provider",
			settings: EmbeddingSettings{Provider: "", Model: "test", APIKey: "key"},
			expected: false,
		},
		{
			name:     "openai without api key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, Model: "test"},
			expected: false,
		},
		{
			name:     "openai with api key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, Model: "test", APIKey: "sk-test"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.settings.IsConfigured(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{
			name:     "empty provider",
			settings: LLMSettings{Provider: "", Model: "test", APIKey: "key"},
			expected: false,
		},
		{
			name:     "openai without api key",
			settings: LLMSettings{Provider: AIProviderOpenAI, Model: "gpt-4o"},
			expected: false,
		},
		{
			name:     "openai with api key",
			settings: LLMSettings{Provider: AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "vertex without project",
			settings: LLMSettings{Provider: AIProviderVertex, Model: "gemini-1.5-pro", Region: "us-central1"},
			expected: false,
		},
		{
			name:     "vertex with project and region",
			settings: LLMSettings{Provider: AIProviderVertex, Project: "p", Region: "us-central1"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.settings.IsConfigured(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	tests := []struct {
		provider AIProvider
		requires bool
	}{
		{AIProviderOpenAI, true},
		{AIProviderVertex, false},
		{"unknown", true}, // Default to requiring key
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if result := tt.provider.RequiresAPIKey(); result != tt.requires {
				t.Errorf("expected %v, got %v", tt.requires, result)
			}
		})
	}
}

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
	}{
		{AIProviderOpenAI, true},
		{AIProviderVertex, true},
		{"anthropic", false},
		{"", false},
	}

	for _, tt := range tests {
		name := string(tt.provider)
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			if result := tt.provider.IsValid(); result != tt.valid {
				t.Errorf("expected %v, got %v", tt.valid, result)
			}
		})
	}
}

func TestLLMSettings_Validate(t *testing.T) {
	good := LLMSettings{Provider: AIProviderVertex}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := LLMSettings{Provider: "ollama"}
	if err := bad.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
