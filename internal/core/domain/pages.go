package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePageList parses a comma-separated list of page numbers.
// Tokens that are not integers or are not positive are dropped.
func ParsePageList(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var pages []int
	for _, token := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n <= 0 {
			continue
		}
		pages = append(pages, n)
	}
	return pages
}

// ValidatePageDeletions checks that page numbers are positive, strictly
// ascending and free of duplicates. The deletion offset rule only holds
// for lists in that shape.
func ValidatePageDeletions(pages []int) error {
	for i, p := range pages {
		if p <= 0 {
			return fmt.Errorf("%w: page %d is not positive", ErrInvalidInput, p)
		}
		if i > 0 && p <= pages[i-1] {
			return fmt.Errorf("%w: pages must be ascending without duplicates (got %d after %d)", ErrInvalidInput, p, pages[i-1])
		}
	}
	return nil
}

// OriginalPagesToDelete maps requested page numbers onto the original
// document. Deletions are applied in order against the shrinking document,
// so after i deletions page n of the current document is original page n+i.
//
// Requesting [3, 5] yields [3, 6]: original page 3, then what was page 6.
func OriginalPagesToDelete(pages []int) []int {
	original := make([]int, len(pages))
	for i, p := range pages {
		original[i] = p + i
	}
	return original
}
