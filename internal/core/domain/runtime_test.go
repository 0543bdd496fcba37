package domain

import (
	"testing"
)

func TestNewRuntimeConfig(t *testing.T) {
	config := NewRuntimeConfig("postgres", "redis")

	if config == nil {
		t.Fatal("expected non-nil config")
	}
	if config.StoreBackend != "postgres" {
		t.Errorf("expected postgres, got %s", config.StoreBackend)
	}
	if config.LockBackend != "redis" {
		t.Errorf("expected redis, got %s", config.LockBackend)
	}
	if config.LLMAvailable() {
		t.Error("expected LLM to be unavailable initially")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable initially")
	}
	if config.HiResExtractionAvailable() {
		t.Error("expected hi-res extraction to be unavailable initially")
	}
}

func TestRuntimeConfig_LLMAvailable(t *testing.T) {
	config := NewRuntimeConfig("memory", "none")

	if config.CanIngest() {
		t.Error("expected ingestion to be impossible without an LLM")
	}

	config.SetLLMAvailable(true)
	if !config.LLMAvailable() {
		t.Error("expected LLM to be available after setting")
	}
	if !config.CanIngest() {
		t.Error("expected ingestion to be possible with an LLM")
	}

	config.SetLLMAvailable(false)
	if config.LLMAvailable() {
		t.Error("expected LLM to be unavailable after clearing")
	}
}

func TestRuntimeConfig_EmbeddingAvailable(t *testing.T) {
	config := NewRuntimeConfig("memory", "none")

	if config.CanRetrieve() {
		t.Error("expected retrieval to be impossible initially")
	}

	config.SetEmbeddingAvailable(true)
	if !config.CanRetrieve() {
		t.Error("expected retrieval to be possible after setting embedding")
	}
}

func TestRuntimeConfig_HiResExtraction(t *testing.T) {
	config := NewRuntimeConfig("memory", "none")

	config.SetHiResExtractionAvailable(true)
	if !config.HiResExtractionAvailable() {
		t.Error("expected hi-res extraction to be available after setting")
	}
}
