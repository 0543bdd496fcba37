package driven

// Normaliser cleans the text of segments of particular element categories
// (the `category` metadata extraction tiers attach, such as "Title",
// "ListItem" or "Footer").
type Normaliser interface {
	// Normalise returns the cleaned content. An empty result drops the segment.
	Normalise(content string, category string) string

	// SupportedCategories returns the categories this normaliser handles.
	// "*" matches every category.
	SupportedCategories() []string

	// Priority returns the normaliser priority (higher = more specific).
	// Priority ranges:
	//   90-100: Layout furniture (headers, footers, page numbers)
	//   50-89:  Element-specific (list items)
	//   1-9:    Fallback
	Priority() int
}

// NormaliserRegistry manages segment normalisers.
// When multiple normalisers match a category, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a category.
	// Returns nil if no normaliser is registered for it.
	Get(category string) Normaliser

	// GetAll retrieves all normalisers that match a category, sorted by priority (highest first).
	GetAll(category string) []Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered categories.
	List() []string
}
