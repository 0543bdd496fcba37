package domain

import (
	"strings"
	"time"
)

// Segment metadata keys
const (
	MetaSource     = "source"
	MetaURL        = "url"
	MetaPageNumber = "page_number"
	MetaCategory   = "category"
	MetaTier       = "tier"
)

// Paper is an ingested document, keyed by the URL it was fetched from.
// Papers are written once and never updated afterwards.
type Paper struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	FullText  string    `json:"paper"`
	Notes     []Note    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// HasNotes reports whether the paper is complete enough to answer questions.
func (p *Paper) HasNotes() bool {
	return p != nil && len(p.Notes) > 0
}

// NoteTexts returns the note texts in stored order.
func (p *Paper) NoteTexts() []string {
	texts := make([]string, 0, len(p.Notes))
	for _, n := range p.Notes {
		texts = append(texts, n.Text)
	}
	return texts
}

// Note is a single observation about a paper.
// PageNumbers refer to the edited PDF (after page deletion).
type Note struct {
	Text        string `json:"note"`
	PageNumbers []int  `json:"pageNumbers"`
}

// Valid reports whether the note has text and at least one positive page number.
func (n Note) Valid() bool {
	if strings.TrimSpace(n.Text) == "" || len(n.PageNumbers) == 0 {
		return false
	}
	for _, p := range n.PageNumbers {
		if p <= 0 {
			return false
		}
	}
	return true
}

// TextSegment is a unit of extracted text with its source metadata
type TextSegment struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// NewTextSegment creates a segment with an initialised metadata map.
func NewTextSegment(content, source string) TextSegment {
	return TextSegment{
		Content:  content,
		Metadata: map[string]string{MetaSource: source},
	}
}

// WithURL returns a copy of the segment tagged with the paper URL.
func (s TextSegment) WithURL(url string) TextSegment {
	meta := make(map[string]string, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		meta[k] = v
	}
	meta[MetaURL] = url
	return TextSegment{Content: s.Content, Metadata: meta}
}

// JoinSegments concatenates segment contents in order.
func JoinSegments(segments []TextSegment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)
	}
	return b.String()
}

// QARecord is one logged question/answer interaction. Records are append-only.
type QARecord struct {
	ID                string    `json:"id"`
	PaperURL          string    `json:"paper_url"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer"`
	Context           string    `json:"context"`
	FollowupQuestions []string  `json:"followupQuestions"`
	CreatedAt         time.Time `json:"created_at"`
}

// Answer is a single answer grouping returned by the QA engine
type Answer struct {
	Answer            string   `json:"answer"`
	FollowupQuestions []string `json:"followupQuestions"`
}
