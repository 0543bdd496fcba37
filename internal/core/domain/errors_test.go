package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrConfig", ErrConfig, "configuration error"},
		{"ErrDownload", ErrDownload, "failed to download pdf"},
		{"ErrPDFEdit", ErrPDFEdit, "failed to edit pdf"},
		{"ErrExtraction", ErrExtraction, "failed to extract text from pdf"},
		{"ErrGeneration", ErrGeneration, "failed to generate response"},
		{"ErrPersistence", ErrPersistence, "failed to persist data"},
		{"ErrPaperNotFound", ErrPaperNotFound, "paper not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	for i, err1 := range publicErrors {
		for j, err2 := range publicErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"unwrapped", errors.New("boom"), nil},
		{"wrapped download", fmt.Errorf("%w: GET http://x: 404", ErrDownload), ErrDownload},
		{"double wrapped", fmt.Errorf("pipeline: %w", fmt.Errorf("%w: tool call", ErrGeneration)), ErrGeneration},
		{"edit wins over invalid input", fmt.Errorf("%w: %w", ErrPDFEdit, ErrInvalidInput), ErrPDFEdit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPublicMessage_HidesCause(t *testing.T) {
	err := fmt.Errorf("%w: dial tcp 10.0.0.1:443: connection refused", ErrDownload)

	if got := PublicMessage(err); got != "failed to download pdf" {
		t.Errorf("expected kind message, got %q", got)
	}
	if got := PublicMessage(errors.New("stack trace")); got != "internal error" {
		t.Errorf("expected generic message, got %q", got)
	}
}
