package services

import (
	"os"
	"testing"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-papers/internal/runtime"
)

const testPaperURL = "https://example.com/paper.pdf"

var testPDF = []byte("%PDF-1.4 test document")

func newTestServices(t *testing.T, llm driven.LLMService) *runtime.Services {
	t.Helper()
	svcs := runtime.NewServices(domain.NewRuntimeConfig("memory", "none"))
	if llm != nil {
		svcs.SetLLMService(llm)
	}
	return svcs
}

func pageSegment(content, page string) domain.TextSegment {
	seg := domain.NewTextSegment(content, "paper.pdf")
	seg.Metadata[domain.MetaPageNumber] = page
	return seg
}

func notesCall(notes ...domain.Note) driven.ToolCall {
	return mocks.ToolCallJSON(notesToolName, map[string]any{"notes": notes})
}

func answerCall(answer string, followups ...string) driven.ToolCall {
	return mocks.ToolCallJSON(answerToolName, map[string]any{
		"answer":            answer,
		"followupQuestions": followups,
	})
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	return data
}
