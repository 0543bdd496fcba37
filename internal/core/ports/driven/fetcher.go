package driven

import (
	"context"
)

// PDFFetcher retrieves raw PDF bytes from a URL or local path
type PDFFetcher interface {
	// Fetch downloads the document in a single attempt.
	// Failures wrap domain.ErrDownload.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
