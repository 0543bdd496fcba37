// Package normalisers cleans extracted segments according to the element
// category the extraction tier assigned them.
package normalisers

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NormaliserRegistry = (*Registry)(nil)

// wildcard matches every category
const wildcard = "*"

// Registry implements NormaliserRegistry with priority-based selection.
// When multiple normalisers match a category, the highest priority one is used.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a new normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make([]driven.Normaliser, 0),
	}
}

// Register registers a normaliser.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
}

// Get retrieves the best-matching normaliser for a category.
// Returns nil if no normaliser is registered for it.
func (r *Registry) Get(category string) driven.Normaliser {
	matches := r.GetAll(category)
	if len(matches) == 0 {
		return nil
	}
	return matches[0] // Already sorted by priority (highest first)
}

// GetAll retrieves all normalisers that match a category, sorted by priority (highest first).
func (r *Registry) GetAll(category string) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.Normaliser
	for _, n := range r.normalisers {
		if matchesCategory(n.SupportedCategories(), category) {
			matches = append(matches, n)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})

	return matches
}

// List returns all registered categories.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, c := range n.SupportedCategories() {
			set[c] = struct{}{}
		}
	}

	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// matchesCategory reports whether category is one of supported.
// Comparison ignores case and surrounding space.
func matchesCategory(supported []string, category string) bool {
	category = strings.TrimSpace(category)

	for _, s := range supported {
		s = strings.TrimSpace(s)
		if s == wildcard || strings.EqualFold(s, category) {
			return true
		}
	}
	return false
}

// DefaultRegistry creates a registry with the built-in normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&PlaintextNormaliser{})
	r.Register(&PageFurnitureNormaliser{})
	r.Register(&ListItemNormaliser{})

	return r
}

// PlaintextNormaliser handles any category.
type PlaintextNormaliser struct{}

func (n *PlaintextNormaliser) Normalise(content string, category string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content)
}

func (n *PlaintextNormaliser) SupportedCategories() []string {
	return []string{wildcard}
}

func (n *PlaintextNormaliser) Priority() int {
	return 1 // Lowest priority - fallback
}

// PageFurnitureNormaliser drops running headers, footers and page
// numbers. They repeat on every page and only add noise to retrieval.
type PageFurnitureNormaliser struct{}

func (n *PageFurnitureNormaliser) Normalise(content string, category string) string {
	return ""
}

func (n *PageFurnitureNormaliser) SupportedCategories() []string {
	return []string{"Header", "Footer", "PageNumber", "PageBreak"}
}

func (n *PageFurnitureNormaliser) Priority() int {
	return 90
}

// ListItemNormaliser replaces bullet glyphs with a markdown-style "- ".
type ListItemNormaliser struct{}

var bulletGlyphs = []string{"•", "◦", "▪", "‣", "∙", "·", "-", "*"}

func (n *ListItemNormaliser) Normalise(content string, category string) string {
	content = strings.TrimSpace(content)
	for _, glyph := range bulletGlyphs {
		if rest, ok := strings.CutPrefix(content, glyph); ok {
			content = strings.TrimSpace(rest)
			break
		}
	}
	if content == "" {
		return ""
	}
	return "- " + content
}

func (n *ListItemNormaliser) SupportedCategories() []string {
	return []string{"ListItem"}
}

func (n *ListItemNormaliser) Priority() int {
	return 50
}
