package services

import (
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

const (
	notesToolName  = "record_notes"
	answerToolName = "answer_question"
)

const notesSystemPrompt = `You are a research assistant who takes careful notes on scholarly papers.
Read the paper and record its key contributions, methods, results and limitations.
Every note must cite the page numbers it is drawn from. Page markers in the text look like [Page N].
Return your notes only by calling the record_notes tool.`

const answerSystemPrompt = `You are a research assistant answering questions about a single scholarly paper.
Answer only from the provided notes and context. If the context does not contain the answer, say so.
Suggest follow-up questions the reader might ask next.
Return your answer only by calling the answer_question tool.`

var notesTool = driven.Tool{
	Name:        notesToolName,
	Description: "Record notes about the paper. Each note cites the pages it comes from.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"notes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"note": map[string]any{
							"type":        "string",
							"description": "A single observation about the paper.",
						},
						"pageNumbers": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "integer"},
							"description": "Pages the note is drawn from, starting at 1.",
						},
					},
					"required": []string{"note", "pageNumbers"},
				},
			},
		},
		"required": []string{"notes"},
	},
}

var answerTool = driven.Tool{
	Name:        answerToolName,
	Description: "Answer the question and suggest follow-up questions.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "The answer to the question.",
			},
			"followupQuestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Questions the reader might ask next.",
			},
		},
		"required": []string{"answer", "followupQuestions"},
	},
}
