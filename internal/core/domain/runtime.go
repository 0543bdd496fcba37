package domain

import "sync"

// RuntimeConfig tracks which capabilities are available at runtime.
// Static backend names are set at startup; capability flags follow the
// services registered in runtime.Services.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	StoreBackend string // "postgres", "firestore" or "memory"
	LockBackend  string // "redis", "postgres" or "none"

	// Dynamic capability flags
	llmAvailable       bool
	embeddingAvailable bool
	hiResExtraction    bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(storeBackend, lockBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		StoreBackend: storeBackend,
		LockBackend:  lockBackend,
	}
}

// LLMAvailable returns whether a language model is configured
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// EmbeddingAvailable returns whether an embedding service is configured
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// HiResExtractionAvailable returns whether the high-fidelity extraction service is configured
func (c *RuntimeConfig) HiResExtractionAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hiResExtraction
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetHiResExtractionAvailable updates the high-fidelity extraction flag
func (c *RuntimeConfig) SetHiResExtractionAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hiResExtraction = available
}

// CanIngest returns true if papers can be ingested
func (c *RuntimeConfig) CanIngest() bool {
	return c.LLMAvailable()
}

// CanRetrieve returns true if similarity search is possible
func (c *RuntimeConfig) CanRetrieve() bool {
	return c.EmbeddingAvailable()
}
