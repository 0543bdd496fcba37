package domain

import "errors"

// Domain errors - used across all layers.
// Adapters wrap the underlying cause with %w; only the sentinel's message
// is ever shown to API callers.
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates a required capability credential is missing
	ErrConfig = errors.New("configuration error")

	// ErrDownload indicates the PDF could not be fetched
	ErrDownload = errors.New("failed to download pdf")

	// ErrPDFEdit indicates page deletion failed
	ErrPDFEdit = errors.New("failed to edit pdf")

	// ErrExtraction indicates every extraction tier failed
	ErrExtraction = errors.New("failed to extract text from pdf")

	// ErrGeneration indicates the language model call or its output parsing failed
	ErrGeneration = errors.New("failed to generate response")

	// ErrPersistence indicates a store write failed
	ErrPersistence = errors.New("failed to persist data")

	// ErrPaperNotFound indicates QA was requested for an unknown or incomplete paper
	ErrPaperNotFound = errors.New("paper not found")
)

// publicErrors is ordered so the most specific kind wins when an error wraps several.
var publicErrors = []error{
	ErrConfig,
	ErrDownload,
	ErrPDFEdit,
	ErrExtraction,
	ErrGeneration,
	ErrPersistence,
	ErrPaperNotFound,
	ErrInvalidInput,
	ErrNotFound,
}

// Kind returns the domain sentinel that err wraps, or nil if it wraps none.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range publicErrors {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// PublicMessage returns a message that is safe to return to API callers.
func PublicMessage(err error) string {
	if kind := Kind(err); kind != nil {
		return kind.Error()
	}
	return "internal error"
}
